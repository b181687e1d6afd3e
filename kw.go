package sa

import (
	"github.com/pkg/errors"
)

// NewKW builds a Kiefer-Wolfowitz optimizer. It needs no gradient oracle:
// at step n the derivative is estimated from two response evaluations
//
//	c_n      = stepsize / n^0.25
//	gradient = (response(x + c_n) - response(x - c_n)) / c_n
//	x       <- project(x + (learningRate / n) * gradient)
//
// Parameters:
// - cfg: shared settings; Iterations defaults to 100
// - learningRate: base of the update scale a_n = learningRate / n
// - stepsize: base of the difference half width c_n; must be non-zero
// - response: noisy objective
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig for non-finite constants, a zero stepsize, a nil
// response or an invalid cfg
//
// Usage example:
//
//	cfg := sa.DefaultConfig(10)
//	cfg.Bounds = sa.NewBounds(-50, 50)
//
//	kw, err := sa.NewKW(cfg, 10, 0.1, sa.Response(func(x float64) float64 {
//	    return -0.1*x*x + 0.01*rng.NormFloat64()
//	}))
//
// Important notes:
//   - The update climbs the response, so pass the objective itself to
//     maximize and its negation to minimize
//   - Each step calls response twice, upper point first
func NewKW(cfg Config, learningRate, stepsize float64, response ResponseFunc) (*Optimizer, error) {
	if err := validateFiniteDifference(learningRate, stepsize, response); err != nil {
		return nil, err
	}

	return newOptimizer(KW, cfg, func() rule {
		return rule{
			step: func(n int, current float64) (float64, error) {
				cn, err := probeWidth(stepsize, n)
				if err != nil {
					return 0, err
				}

				gradient, err := finiteDifference(response, current, cn)
				if err != nil {
					return 0, err
				}

				return current + learningRate/float64(n)*gradient, nil
			},
		}
	})
}

// NewStarSA builds a hybrid optimizer that blends the Kiefer-Wolfowitz
// finite-difference estimate with a direct gradient estimate taken at the
// same two points x ± c_n:
//
//	fd     = (response(x + c_n) - response(x - c_n)) / c_n
//	direct = 0.5 * (gradient(x + c_n) + gradient(x - c_n))
//	alpha  = weight(n, c_n)
//	x     <- project(x + (learningRate / n) * (alpha*fd + (1-alpha)*direct))
//
// Parameters:
// - cfg: shared settings; Iterations defaults to 1000
// - learningRate, stepsize: as for NewKW
// - response: noisy objective
// - gradient: noisy derivative of the same objective
// - weight: blend alpha per step; nil uses FixedWeight(DefaultWeight)
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig as for NewKW, or for a nil gradient
//
// Important notes:
//   - Each step makes two response calls followed by two gradient calls
//   - alpha = 1 reproduces NewKW exactly and ignores the gradient
//   - A non-finite alpha stops the run with ErrNumeric
func NewStarSA(
	cfg Config,
	learningRate, stepsize float64,
	response ResponseFunc,
	gradient GradientFunc,
	weight WeightFunc,
) (*Optimizer, error) {
	if err := validateFiniteDifference(learningRate, stepsize, response); err != nil {
		return nil, err
	}

	if gradient == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "gradient function is nil")
	}

	if weight == nil {
		weight = FixedWeight(DefaultWeight)
	}

	return newOptimizer(StarSA, cfg, func() rule {
		return rule{
			step: func(n int, current float64) (float64, error) {
				cn, err := probeWidth(stepsize, n)
				if err != nil {
					return 0, err
				}

				fd, err := finiteDifference(response, current, cn)
				if err != nil {
					return 0, err
				}

				gUpper, err := gradient(current + cn)
				if err != nil {
					return 0, err
				}

				gLower, err := gradient(current - cn)
				if err != nil {
					return 0, err
				}

				direct := 0.5 * (gUpper + gLower)

				alpha := weight(n, cn)
				if !finite(alpha) {
					return 0, errors.Wrapf(ErrNumeric, "blend weight %v at step %d", alpha, n)
				}

				blended := alpha*fd + (1-alpha)*direct

				return current + learningRate/float64(n)*blended, nil
			},
		}
	})
}

func validateFiniteDifference(learningRate, stepsize float64, response ResponseFunc) error {
	if err := requireFinite("learning rate", learningRate); err != nil {
		return err
	}

	if err := requireFinite("stepsize", stepsize); err != nil {
		return err
	}

	if stepsize == 0 {
		return errors.Wrap(ErrInvalidConfig, "stepsize must be non-zero")
	}

	if response == nil {
		return errors.Wrap(ErrInvalidConfig, "response function is nil")
	}

	return nil
}
