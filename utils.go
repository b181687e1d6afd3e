package sa

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

//////
// Helper functions.
//////

// finite reports whether every value is neither NaN nor infinite.
func finite[T constraints.Float](values ...T) bool {
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}

	return true
}

// Mean returns the arithmetic mean of values, such as a Result.Trajectory
// or a path stored at reduced precision.
//
// Parameters:
// - values: the path to average; float32 and float64 slices are accepted
//
// Returns:
// - float64: the mean, always finite for finite input
// - error: ErrNumeric if values is empty or holds a NaN or an infinity
//
// Important notes:
//   - The sum is taken on values scaled by a power of two below the largest
//     magnitude, so finite paths near math.MaxFloat64 do not overflow
//   - Scaling by a power of two is exact; only values far below the largest
//     one may lose low-order bits to subnormal rounding
//   - Does not modify values
func Mean[T constraints.Float](values []T) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrap(ErrNumeric, "mean of an empty path")
	}

	widened := make([]float64, len(values))
	for i, v := range values {
		widened[i] = float64(v)
	}

	if !finite(widened...) {
		return 0, errors.Wrap(ErrNumeric, "mean of a non-finite path")
	}

	largest := floats.Norm(widened, math.Inf(1))
	if largest == 0 {
		return 0, nil
	}

	// largest < 2^exp, so every scaled value lies in (-1, 1).
	_, exp := math.Frexp(largest)
	floats.Scale(math.Ldexp(1, -exp), widened)

	return math.Ldexp(floats.Sum(widened)/float64(len(widened)), exp), nil
}

// probeWidth returns c_n = stepsize / n^0.25, the finite-difference half
// width at step n.
//
// Parameters:
// - stepsize: base probe width, validated non-zero at construction
// - n: 1-indexed step
//
// Returns:
// - float64: c_n
// - error: ErrNumeric if c_n underflows to zero or is not finite
//
// Important notes:
//   - c_n shrinks slower than the update scale a_n = learningRate/n; a wide
//     difference is biased and a narrow one amplifies noise
//   - A sub-normal stepsize underflows after a few steps; the run then stops
//     with ErrNumeric instead of dividing by zero
func probeWidth(stepsize float64, n int) (float64, error) {
	cn := stepsize / math.Pow(float64(n), 0.25)

	if !finite(cn) || cn == 0 {
		return 0, errors.Wrapf(ErrNumeric, "probe width c_n=%v at step %d", cn, n)
	}

	return cn, nil
}

// finiteDifference returns the two-sided estimate (f(x+cn) - f(x-cn)) / cn.
//
// Parameters:
// - response: noisy objective
// - x: current iterate
// - cn: half width from probeWidth
//
// Returns:
// - float64: gradient estimate
// - error: the response's own error, unchanged
//
// Important notes:
//   - The upper point is evaluated first, then the lower one
//   - A failing upper call skips the lower call
//   - Each call may draw fresh noise; nothing is cached between steps
func finiteDifference(response ResponseFunc, x, cn float64) (float64, error) {
	upper, err := response(x + cn)
	if err != nil {
		return 0, err
	}

	lower, err := response(x - cn)
	if err != nil {
		return 0, err
	}

	return (upper - lower) / cn, nil
}

// requireFinite checks a named constructor parameter.
func requireFinite(name string, v float64) error {
	if !finite(v) {
		return errors.Wrapf(ErrInvalidConfig, "%s=%v is not finite", name, v)
	}

	return nil
}
