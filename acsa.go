package sa

import (
	"math"

	"github.com/pkg/errors"
)

// NewACSA builds an Accelerated Stochastic Approximation optimizer using
// cfg.Initial as the domain-size constant of the step scale:
//
//	gamma = sqrt((L² + 0.1) * N * (N+1) * (N+2) / (1.5 * cfg.Initial))
//
// Parameters:
// - cfg: shared settings; Iterations is required and has no default
// - lipschitz: smoothness constant L
// - gradient: noisy derivative of the objective
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig when Iterations is unset, cfg.Initial is zero or
// gradient is nil; ErrNumeric when gamma is not a finite positive number,
// which is the case for a negative cfg.Initial
//
// Warning:
//   - gamma divides by the starting point, so the step scale changes with
//     where the run begins. Use NewACSAWithDomain to decouple the two
func NewACSA(cfg Config, lipschitz float64, gradient GradientFunc) (*Optimizer, error) {
	return NewACSAWithDomain(cfg, lipschitz, cfg.Initial, gradient)
}

// NewACSAWithDomain builds an ACSA optimizer with an explicit domain-size
// constant in place of cfg.Initial in the gamma formula.
//
// Two sequences start at cfg.Initial: the prox sequence x and the
// aggregate sequence y. At step n = 1..N:
//
//	alpha = 2 / (n+1)
//	m     = alpha*x + (1-alpha)*y
//	x     = x + (n / gamma) * gradient(m)
//	y     = alpha*x + (1-alpha)*y
//	x     = project(x)
//
// Only x is projected. The path records y, and Result.Estimate is the last
// y.
func NewACSAWithDomain(cfg Config, lipschitz, domain float64, gradient GradientFunc) (*Optimizer, error) {
	if err := requireFinite("lipschitz", lipschitz); err != nil {
		return nil, err
	}

	if err := requireFinite("domain", domain); err != nil {
		return nil, err
	}

	if domain == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "domain size (initial iterate) must be non-zero")
	}

	if gradient == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "gradient function is nil")
	}

	o, err := newOptimizer(ACSA, cfg, nil)
	if err != nil {
		return nil, err
	}

	gamma := acsaGamma(lipschitz, domain, o.iterations)
	if !finite(gamma) || gamma == 0 {
		return nil, errors.Wrapf(ErrNumeric, "step scale gamma=%v from L=%v, domain=%v, N=%d",
			gamma, lipschitz, domain, o.iterations)
	}

	o.newRule = func() rule {
		aggregate := cfg.Initial

		return rule{
			step: func(n int, current float64) (float64, error) {
				alpha := 2.0 / float64(n+1)
				medium := alpha*current + (1-alpha)*aggregate

				g, err := gradient(medium)
				if err != nil {
					return 0, err
				}

				next := current + float64(n)/gamma*g
				aggregate = alpha*next + (1-alpha)*aggregate

				return next, nil
			},
			estimate: func(float64) float64 {
				return aggregate
			},
		}
	}

	return o, nil
}

func acsaGamma(lipschitz, domain float64, iterations int) float64 {
	n := float64(iterations)

	return math.Sqrt((lipschitz*lipschitz + 0.1) * n * (n + 1) * (n + 2) / (1.5 * domain))
}
