package sa

//////
// Blend weights for StarSA.
// Each function picks alpha, the share of the finite-difference estimate in
// alpha*fd + (1-alpha)*direct. The rest goes to the direct gradient.
//////

// DefaultWeight is the fixed blend used when NewStarSA gets a nil WeightFunc.
const DefaultWeight = 0.5

// WeightFunc returns the finite-difference share alpha at step n, given the
// probe width cn used for that step.
//
// Implementation notes for custom weights:
// - Should return a value in [0, 1]
// - Must be deterministic in (n, cn); the optimizer does not check
type WeightFunc func(n int, cn float64) float64

// FixedWeight returns the same alpha at every step.
//
// Example:
//
//	star, err := sa.NewStarSA(cfg, 10, 0.1, response, gradient, sa.FixedWeight(0.25))
func FixedWeight(alpha float64) WeightFunc {
	return func(int, float64) float64 {
		return alpha
	}
}

// VarianceWeight returns the variance-minimizing blend for two independent
// unbiased estimators:
//
//	alpha = sigmaG² cn² / (sigmaF² + sigmaG² cn²)
//
// sigmaF is the noise scale of the response callback and sigmaG the noise
// scale of the gradient callback. As cn shrinks the finite-difference
// estimate gets noisier and alpha drops toward 0.
//
// When both scales are zero there is nothing to trade off and DefaultWeight
// is used.
//
// Example:
//
//	weight := sa.VarianceWeight(0.01, 0.01)
//	star, err := sa.NewStarSA(cfg, 10, 0.1, response, gradient, weight)
func VarianceWeight(sigmaF, sigmaG float64) WeightFunc {
	varF := sigmaF * sigmaF
	varG := sigmaG * sigmaG

	return func(_ int, cn float64) float64 {
		g := varG * cn * cn

		if varF+g == 0 {
			return DefaultWeight
		}

		return g / (varF + g)
	}
}
