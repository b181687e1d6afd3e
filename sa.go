package sa

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"
)

//////
// Const, vars, types.
//////

// MaxIterations is the largest accepted iteration budget. The path keeps
// Iterations+1 float64 values, so the budget stays well inside both int and
// allocation limits on 32- and 64-bit platforms.
const MaxIterations = math.MaxInt32 - 1

// rule is one run's update strategy. A fresh rule is built for every call to
// Optimize, so any state it closes over lives only for that run.
type rule struct {
	// step returns the unprojected iterate after step n (1-indexed).
	step func(n int, current float64) (float64, error)

	// estimate maps the projected iterate to the value recorded on the path.
	// Nil records the iterate itself.
	estimate func(current float64) float64

	// averaged selects the path mean as Result.Estimate.
	averaged bool
}

// Optimizer runs one stochastic approximation variant over a fixed
// iteration budget. Build it with NewKW, NewRM, NewStarSA, NewRSA,
// NewIASA, NewACSA or New.
//
// An Optimizer keeps no iteration state between calls: each Optimize call
// starts again from Config.Initial.
type Optimizer struct {
	variant    Variant
	cfg        Config
	iterations int
	newRule    func() rule
}

//////
// Factory.
//////

// newOptimizer validates the shared configuration and resolves the
// iteration budget.
func newOptimizer(variant Variant, cfg Config, newRule func() rule) (*Optimizer, error) {
	if err := requireFinite("initial", cfg.Initial); err != nil {
		return nil, err
	}

	if err := cfg.Bounds.Validate(); err != nil {
		return nil, err
	}

	iterations := cfg.Iterations
	if iterations == 0 {
		iterations = variant.DefaultIterations()
	}

	if iterations == 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s requires an explicit iteration count", variant)
	}

	if iterations < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "iterations must be positive, got %d", iterations)
	}

	// The path holds iterations+1 values.
	if iterations > MaxIterations {
		return nil, errors.Wrapf(ErrInvalidConfig, "iterations %d exceeds %d", iterations, MaxIterations)
	}

	return &Optimizer{
		variant:    variant,
		cfg:        cfg,
		iterations: iterations,
		newRule:    newRule,
	}, nil
}

//////
// Methods.
//////

// Variant returns the update rule this optimizer runs.
func (o *Optimizer) Variant() Variant {
	return o.variant
}

// Iterations returns the resolved iteration budget.
func (o *Optimizer) Iterations() int {
	return o.iterations
}

// Optimize runs the full N-step loop on the caller's goroutine.
//
// Each step calls the variant's callbacks once or twice, in iteration order,
// then projects the new iterate onto Config.Bounds. The run stops at the
// first callback error or numeric error and returns it as an
// *IterationError; no result is returned in that case.
//
// Returns:
// - Result: estimate, last path value, path mean and, when
// RecordTrajectory is set, the N+1 path
// - error: nil on success
func (o *Optimizer) Optimize() (Result, error) {
	logger := o.logger()
	r := o.newRule()

	// The path is always kept: Result.Average needs every value.
	path := make([]float64, o.iterations+1)
	path[0] = o.cfg.Initial

	current := o.cfg.Initial

	logger.Debug("stochastic approximation started",
		"variant", o.variant,
		"initial", current,
		"iterations", o.iterations,
	)

	for n := 1; n <= o.iterations; n++ {
		next, err := r.step(n, current)
		if err != nil {
			return Result{}, o.abort(logger, n, path[:n], err)
		}

		// Clamping an infinite iterate would hide the degeneracy.
		if !finite(next) {
			return Result{}, o.abort(logger, n, path[:n],
				errors.Wrapf(ErrNumeric, "iterate %v from %v", next, current))
		}

		current = o.cfg.Bounds.Project(next)

		recorded := current
		if r.estimate != nil {
			recorded = r.estimate(current)

			if !finite(recorded) {
				return Result{}, o.abort(logger, n, path[:n],
					errors.Wrapf(ErrNumeric, "estimate %v", recorded))
			}
		}

		path[n] = recorded

		o.sendProgress(ProgressUpdate{
			Variant:         o.variant,
			Iteration:       n,
			TotalIterations: o.iterations,
			Current:         current,
			Estimate:        recorded,
		})
	}

	average, err := Mean(path)
	if err == nil && !finite(average) {
		err = errors.Wrapf(ErrNumeric, "path average %v", average)
	}

	if err != nil {
		return Result{}, o.abort(logger, o.iterations, path, err)
	}

	result := Result{
		Variant: o.variant,
		Last:    path[o.iterations],
		Average: average,
	}

	result.Estimate = result.Last
	if r.averaged {
		result.Estimate = result.Average
	}

	if o.cfg.RecordTrajectory {
		result.Trajectory = path
	}

	logger.Debug("stochastic approximation finished",
		"variant", o.variant,
		"estimate", result.Estimate,
		"last", result.Last,
		"average", result.Average,
	)

	return result, nil
}

// abort wraps a failure at step n with the path values filled so far.
func (o *Optimizer) abort(logger *slog.Logger, n int, filled []float64, err error) error {
	logger.Debug("stochastic approximation aborted",
		"variant", o.variant,
		"iteration", n,
		"error", err,
	)

	partial := make([]float64, len(filled))
	copy(partial, filled)

	return &IterationError{
		Variant:   o.variant,
		Iteration: n,
		Partial:   partial,
		Err:       err,
	}
}

// sendProgress forwards an update without blocking the loop.
func (o *Optimizer) sendProgress(update ProgressUpdate) {
	if o.cfg.ProgressChan == nil {
		return
	}

	select {
	case o.cfg.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}

func (o *Optimizer) logger() *slog.Logger {
	if o.cfg.Logger != nil {
		return o.cfg.Logger
	}

	return slog.Default()
}
