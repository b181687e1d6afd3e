package sa

import (
	"math"

	"github.com/pkg/errors"
)

// NewRM builds a Robbins-Monro optimizer driven by a noisy gradient oracle:
//
//	x <- project(x + (learningRate / n) * gradient(x))
//
// Parameters:
// - cfg: shared settings; Iterations defaults to 100
// - learningRate: base of the update scale a_n = learningRate / n
// - gradient: noisy derivative of the objective
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig for a non-finite learning rate, a nil gradient
// or an invalid cfg
//
// Usage example:
//
//	cfg := sa.DefaultConfig(10)
//	cfg.Bounds = sa.NewBounds(-50, 50)
//
//	rm, err := sa.NewRM(cfg, 10, sa.Gradient(func(x float64) float64 {
//	    return -0.2*x + 0.01*rng.NormFloat64()
//	}))
//
// Important notes:
//   - The only error source is evaluation noise: no finite differencing
//   - The update adds the gradient; negate it to minimize
func NewRM(cfg Config, learningRate float64, gradient GradientFunc) (*Optimizer, error) {
	if err := validateGradient(learningRate, gradient); err != nil {
		return nil, err
	}

	return newOptimizer(RM, cfg, func() rule {
		return rule{step: harmonicStep(learningRate, gradient)}
	})
}

// NewRSA builds a Robust Stochastic Approximation optimizer. The learning
// rate is derived once as dx/m, where dx bounds the domain diameter and m
// bounds the gradient, and the step decays as 1/sqrt(n):
//
//	x <- project(x + (dx / m) / sqrt(n) * gradient(x))
//
// Parameters:
// - cfg: shared settings; Iterations defaults to 1000
// - dx: domain diameter constant
// - m: gradient bound constant; must be non-zero
// - gradient: noisy derivative of the objective
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig for non-finite constants, m == 0, a nil gradient
// or an invalid cfg
//
// Important notes:
//   - The 1/sqrt(n) decay is slower than RM's 1/n; it gives up asymptotic
//     speed for robustness to a badly chosen scale
//   - The learning rate is not a parameter: tune dx and m instead
func NewRSA(cfg Config, dx, m float64, gradient GradientFunc) (*Optimizer, error) {
	if err := requireFinite("dx", dx); err != nil {
		return nil, err
	}

	if err := requireFinite("m", m); err != nil {
		return nil, err
	}

	if m == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "gradient bound m is zero")
	}

	learningRate := dx / m

	if err := validateGradient(learningRate, gradient); err != nil {
		return nil, err
	}

	return newOptimizer(RSA, cfg, func() rule {
		return rule{
			step: func(n int, current float64) (float64, error) {
				g, err := gradient(current)
				if err != nil {
					return 0, err
				}

				return current + learningRate/math.Sqrt(float64(n))*g, nil
			},
		}
	})
}

// NewIASA builds an Iterative Averaging optimizer. It runs the Robbins-Monro
// update but reports the Polyak-Ruppert estimate: the mean of every iterate,
// the initial one included, which has lower asymptotic variance than the
// last iterate.
//
// Parameters:
// - cfg: shared settings; Iterations defaults to 1000
// - learningRate: base of the update scale a_n = learningRate / n
// - gradient: noisy derivative of the objective
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig for a non-finite learning rate, a nil gradient
// or an invalid cfg
//
// Result fields:
//   - Estimate and Average hold the mean of the N+1 iterates
//   - Last holds the final iterate
//   - Trajectory holds the raw path when recording, alongside the mean
//
// Important notes:
//   - Averaging helps most when the last iterate still oscillates; with a
//     far-off start the initial iterate biases the mean for small N
func NewIASA(cfg Config, learningRate float64, gradient GradientFunc) (*Optimizer, error) {
	if err := validateGradient(learningRate, gradient); err != nil {
		return nil, err
	}

	return newOptimizer(IASA, cfg, func() rule {
		return rule{
			step:     harmonicStep(learningRate, gradient),
			averaged: true,
		}
	})
}

// harmonicStep is the 1/n gradient update shared by RM and IASA.
//
// Returns:
// - a step function computing x + (learningRate / n) * gradient(x),
// unprojected; the runner applies the bounds
//
// Important notes:
//   - Calls gradient exactly once per step
//   - Keeps no state, so one closure is safe to share across runs
func harmonicStep(learningRate float64, gradient GradientFunc) func(int, float64) (float64, error) {
	return func(n int, current float64) (float64, error) {
		g, err := gradient(current)
		if err != nil {
			return 0, err
		}

		return current + learningRate/float64(n)*g, nil
	}
}

func validateGradient(learningRate float64, gradient GradientFunc) error {
	if err := requireFinite("learning rate", learningRate); err != nil {
		return err
	}

	if gradient == nil {
		return errors.Wrap(ErrInvalidConfig, "gradient function is nil")
	}

	return nil
}
