package sa

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

//////
// Callbacks.
//////

// ResponseFunc is a noisy evaluation of the objective at x.
//
// The optimizer treats it as a black box: it may draw fresh randomness on
// every call, but it must not touch the optimizer itself. A non-nil error
// aborts the run; the optimizer never retries a failed call.
//
// Usage example:
//
//	rng := rand.New(rand.NewSource(1))
//	response := sa.ResponseFunc(func(x float64) (float64, error) {
//	    return -0.1*x*x + 0.01*rng.NormFloat64(), nil
//	})
type ResponseFunc func(x float64) (float64, error)

// GradientFunc is a noisy evaluation of the objective's derivative at x.
// Same contract as ResponseFunc.
type GradientFunc func(x float64) (float64, error)

// Response lifts an infallible function into a ResponseFunc.
func Response(f func(float64) float64) ResponseFunc {
	return func(x float64) (float64, error) {
		return f(x), nil
	}
}

// Gradient lifts an infallible function into a GradientFunc.
func Gradient(f func(float64) float64) GradientFunc {
	return func(x float64) (float64, error) {
		return f(x), nil
	}
}

//////
// Variants.
//////

// Variant names an update rule.
type Variant string

const (
	// KW is Kiefer-Wolfowitz: two-sided finite-difference gradient.
	KW Variant = "kw"

	// RM is Robbins-Monro: direct noisy gradient.
	RM Variant = "rm"

	// StarSA blends the finite-difference and direct gradient estimates.
	StarSA Variant = "star"

	// RSA is Robust Stochastic Approximation with 1/sqrt(n) step decay.
	RSA Variant = "rsa"

	// IASA is Iterative Averaging (Polyak-Ruppert) Stochastic Approximation.
	IASA Variant = "iasa"

	// ACSA is Accelerated Stochastic Approximation.
	ACSA Variant = "acsa"
)

// Variants lists every supported variant.
var Variants = []Variant{KW, RM, StarSA, RSA, IASA, ACSA}

// ParseVariant resolves a variant name, case-insensitively.
func ParseVariant(name string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(name)))

	for _, known := range Variants {
		if v == known {
			return v, nil
		}
	}

	return "", errors.Wrapf(ErrInvalidConfig, "unknown variant %q", name)
}

// DefaultIterations returns the iteration budget used when Config.Iterations
// is left at zero. ACSA has no default and returns 0.
func (v Variant) DefaultIterations() int {
	switch v {
	case KW, RM:
		return 100
	case StarSA, RSA, IASA:
		return 1000
	default:
		return 0
	}
}

//////
// Configuration.
//////

// Bounds is an optional box constraint. Each side is only enforced when its
// Has flag is set.
type Bounds struct {
	// Lower is the lower clamp, used when HasLower is true.
	Lower float64

	// Upper is the upper clamp, used when HasUpper is true.
	Upper float64

	HasLower bool
	HasUpper bool
}

// NewBounds returns a box constraint with both sides set.
func NewBounds(lower, upper float64) Bounds {
	return Bounds{Lower: lower, Upper: upper, HasLower: true, HasUpper: true}
}

// WithLower returns a copy of b with the lower side set.
func (b Bounds) WithLower(lower float64) Bounds {
	b.Lower = lower
	b.HasLower = true

	return b
}

// WithUpper returns a copy of b with the upper side set.
func (b Bounds) WithUpper(upper float64) Bounds {
	b.Upper = upper
	b.HasUpper = true

	return b
}

// Validate reports an inverted or non-finite box.
func (b Bounds) Validate() error {
	if b.HasLower && !finite(b.Lower) {
		return errors.Wrapf(ErrInvalidConfig, "lower bound %v is not finite", b.Lower)
	}

	if b.HasUpper && !finite(b.Upper) {
		return errors.Wrapf(ErrInvalidConfig, "upper bound %v is not finite", b.Upper)
	}

	if b.HasLower && b.HasUpper && b.Lower > b.Upper {
		return errors.Wrapf(ErrInvalidConfig, "lower bound %v exceeds upper bound %v", b.Lower, b.Upper)
	}

	return nil
}

// Project clamps x into the box. The upper side is checked first.
func (b Bounds) Project(x float64) float64 {
	if b.HasUpper && x > b.Upper {
		return b.Upper
	}

	if b.HasLower && x < b.Lower {
		return b.Lower
	}

	return x
}

// ProgressUpdate reports the state after one iteration.
type ProgressUpdate struct {
	// Variant is the running update rule.
	Variant Variant

	// Iteration is the 1-indexed step just completed.
	Iteration int

	// TotalIterations is the run's iteration budget.
	TotalIterations int

	// Current is the (projected) iterate after this step.
	Current float64

	// Estimate is the value recorded on the path for this step. It equals
	// Current except for ACSA, where it is the aggregate.
	Estimate float64
}

// Config holds the settings shared by every variant.
//
// Fields explanation:
// - Initial: starting iterate, slot 0 of the path
// - Iterations: number of update steps; zero selects the variant default
// - Bounds: optional box constraint applied after every update
// - RecordTrajectory: keep and return the full N+1 path
// - ProgressChan: optional per-step updates, dropped when the channel is full
// - Logger: optional, defaults to slog.Default()
//
// Usage example:
//
//	cfg := sa.DefaultConfig(10)
//	cfg.Iterations = 1000
//	cfg.Bounds = sa.NewBounds(-50, 50)
//
//	kw, err := sa.NewKW(cfg, 10, 0.1, response)
//	if err != nil {
//	    return err
//	}
//
//	res, err := kw.Optimize()
//
// Note:
// - Create separate configs for concurrent runs that report progress.
type Config struct {
	// Initial is the starting iterate.
	Initial float64

	// Iterations is the fixed number of steps (N). Zero selects the
	// variant's default; ACSA has none and requires an explicit value.
	Iterations int

	// Bounds is the optional projection box.
	Bounds Bounds

	// RecordTrajectory keeps the full path in Result.Trajectory.
	RecordTrajectory bool

	// ProgressChan receives one update per iteration when set.
	// If nil, no updates will be sent.
	ProgressChan chan<- ProgressUpdate

	// Logger receives debug events. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns an unbounded, non-recording configuration starting
// at initial that uses the variant's default iteration count.
func DefaultConfig(initial float64) Config {
	return Config{
		Initial:          initial,
		Iterations:       0,
		RecordTrajectory: false,
		ProgressChan:     nil, // Default to no progress updates.
	}
}

// Result is the outcome of a completed run.
type Result struct {
	// Variant is the update rule that produced this result.
	Variant Variant

	// Estimate is the algorithm's final estimate: the last iterate for
	// KW, RM, StarSA and RSA, the last aggregate for ACSA, and the
	// Polyak-Ruppert mean for IASA.
	Estimate float64

	// Last is the final value on the path.
	Last float64

	// Average is the arithmetic mean of the full path, index 0 included.
	Average float64

	// Trajectory holds Iterations+1 values when RecordTrajectory was set,
	// index 0 being Initial. Nil otherwise.
	Trajectory []float64
}
