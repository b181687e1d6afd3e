// Package sa provides stochastic approximation solvers: iterative
// algorithms that estimate the root or optimum of an unknown function from
// noisy evaluations of the function or of its gradient.
//
// # Features
//
// The package includes the following key features:
//
//   - Six update rules behind one runner: Kiefer-Wolfowitz (KW),
//     Robbins-Monro (RM), a finite-difference/direct hybrid (StarSA),
//     Robust SA (RSA), Iterative Averaging SA (IASA) and Accelerated SA
//     (ACSA)
//   - Pluggable callbacks: noise lives entirely in the caller's
//     ResponseFunc and GradientFunc
//   - Box constraints: every iterate is projected onto optional bounds
//   - Sample paths: the full N+1 trajectory on request
//   - Polyak-Ruppert averages for every variant via Result.Average
//   - Progress Monitoring: per-step updates via channels
//   - Explicit errors: configuration, numeric and callback failures are
//     returned, never silently turned into NaN
//
// # Installation
//
// To install the package, use:
//
//	go get github.com/thalesfsp/sa
//
// # Variants
//
// All variants run a fixed number of steps N. At step n (1-indexed):
//
// 1. KW, finite differences only:
//
//	c_n = stepsize / n^0.25
//	x   = project(x + learningRate/n * (f(x+c_n) - f(x-c_n)) / c_n)
//
// 2. RM, direct gradient:
//
//	x = project(x + learningRate/n * g(x))
//
// 3. StarSA blends both KW and direct estimates with a WeightFunc
// (FixedWeight or VarianceWeight).
//
// 4. RSA uses learningRate = Dx/M and a 1/sqrt(n) decay.
//
// 5. IASA runs RM and reports the mean of all iterates.
//
// 6. ACSA keeps a projected prox sequence and an unprojected aggregate
// sequence and reports the aggregate. It requires an explicit N.
//
// Updates climb the response: pass the objective to maximize, or its
// negation to minimize.
//
// # Usage
//
//	rng := rand.New(rand.NewSource(1))
//
//	cfg := sa.DefaultConfig(10)
//	cfg.Iterations = 1000
//	cfg.Bounds = sa.NewBounds(-50, 50)
//
//	rm, err := sa.NewRM(cfg, 10, sa.Gradient(func(x float64) float64 {
//	    return -0.2*x + 0.01*rng.NormFloat64()
//	}))
//	if err != nil {
//	    return err
//	}
//
//	res, err := rm.Optimize()
//
// # Errors
//
// Constructors return errors wrapping ErrInvalidConfig. Optimize returns an
// *IterationError wrapping either ErrNumeric or the callback's own error.
// Use errors.Is and errors.As.
//
// # Thread Safety
//
// Optimize runs synchronously on the caller's goroutine and keeps its
// iteration state local, so separate optimizers may run concurrently.
// Callbacks shared between concurrent runs must be safe for concurrent use.
package sa
