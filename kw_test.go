package sa

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKWReferenceScenario(t *testing.T) {
	cfg := DefaultConfig(10)
	cfg.Iterations = 1000
	cfg.Bounds = NewBounds(-50, 50)

	response := Response(func(x float64) float64 { return -0.1 * x * x })

	kw, err := NewKW(cfg, 10, 0.1, response)
	require.NoError(t, err)

	res, err := kw.Optimize()
	require.NoError(t, err)

	assert.Less(t, math.Abs(res.Estimate), 5.0)
}

func TestKWConvergesOnConcaveResponse(t *testing.T) {
	cfg := DefaultConfig(3)
	cfg.Iterations = 200

	kw, err := NewKW(cfg, 0.1, 1, Response(func(x float64) float64 { return -x * x }))
	require.NoError(t, err)

	res, err := kw.Optimize()
	require.NoError(t, err)

	assert.Less(t, math.Abs(res.Estimate), 1.0)
	assert.Equal(t, res.Last, res.Estimate)
}

func TestKWNoisyConverges(t *testing.T) {
	cfg := DefaultConfig(10)
	cfg.Iterations = 1000
	cfg.Bounds = NewBounds(-50, 50)

	q := newQuadratic(0.1, 0.01, 11)

	kw, err := NewKW(cfg, 10, 0.1, q.response)
	require.NoError(t, err)

	res, err := kw.Optimize()
	require.NoError(t, err)

	assert.Less(t, math.Abs(res.Estimate), 5.0)
}

func TestKWProbesUpperThenLower(t *testing.T) {
	cfg := DefaultConfig(1)
	cfg.Iterations = 3

	var probes []float64

	response := func(x float64) (float64, error) {
		probes = append(probes, x)

		return 0, nil
	}

	kw, err := NewKW(cfg, 1, 0.5, response)
	require.NoError(t, err)

	_, err = kw.Optimize()
	require.NoError(t, err)

	// Two calls per step, flat response keeps the iterate at 1.
	require.Len(t, probes, 6)

	for n := 1; n <= 3; n++ {
		cn := 0.5 / math.Pow(float64(n), 0.25)

		assert.InDelta(t, 1+cn, probes[2*(n-1)], 1e-12)
		assert.InDelta(t, 1-cn, probes[2*(n-1)+1], 1e-12)
	}
}

func TestKWInvalidConfig(t *testing.T) {
	cfg := DefaultConfig(1)
	response := Response(func(x float64) float64 { return x })

	_, err := NewKW(cfg, 1, 0, response)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewKW(cfg, math.Inf(1), 0.1, response)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewKW(cfg, 1, 0.1, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestKWVanishingProbeWidth(t *testing.T) {
	kw, err := NewKW(DefaultConfig(10), 1, math.SmallestNonzeroFloat64,
		Response(func(x float64) float64 { return -x * x }))
	require.NoError(t, err)

	// c_n underflows to zero well before the 100th step.
	_, err = kw.Optimize()
	assert.ErrorIs(t, err, ErrNumeric)
}

func TestKWResponseFailure(t *testing.T) {
	boom := errors.New("response failed")

	var calls int

	response := func(x float64) (float64, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}

		return x, nil
	}

	kw, err := NewKW(DefaultConfig(4), 1, 0.1, response)
	require.NoError(t, err)

	_, err = kw.Optimize()
	assert.ErrorIs(t, err, boom)

	var iterErr *IterationError
	require.ErrorAs(t, err, &iterErr)
	assert.Equal(t, 1, iterErr.Iteration)
	assert.Equal(t, []float64{4}, iterErr.Partial)
}

func TestStarSAConverges(t *testing.T) {
	cfg := DefaultConfig(10)
	cfg.Iterations = 1000
	cfg.Bounds = NewBounds(-50, 50)

	q := newQuadratic(0.1, 0.01, 12)

	for name, weight := range map[string]WeightFunc{
		"default":  nil,
		"fixed":    FixedWeight(0.25),
		"variance": VarianceWeight(0.01, 0.01),
	} {
		star, err := NewStarSA(cfg, 10, 0.1, q.response, q.gradient, weight)
		require.NoError(t, err, name)

		res, err := star.Optimize()
		require.NoError(t, err, name)

		assert.Less(t, math.Abs(res.Estimate), 5.0, name)
	}
}

func TestStarSAFullWeightMatchesKW(t *testing.T) {
	cfg := DefaultConfig(10)
	cfg.Iterations = 100
	cfg.Bounds = NewBounds(-50, 50)
	cfg.RecordTrajectory = true

	response := Response(func(x float64) float64 { return -0.1 * x * x })
	gradient := Gradient(func(x float64) float64 { return math.Sin(x) })

	kw, err := NewKW(cfg, 10, 0.1, response)
	require.NoError(t, err)

	// alpha = 1 ignores the direct gradient entirely.
	star, err := NewStarSA(cfg, 10, 0.1, response, gradient, FixedWeight(1))
	require.NoError(t, err)

	kwRes, err := kw.Optimize()
	require.NoError(t, err)

	starRes, err := star.Optimize()
	require.NoError(t, err)

	assert.Equal(t, kwRes.Trajectory, starRes.Trajectory)
}

func TestStarSABlendsOffsetGradients(t *testing.T) {
	cfg := DefaultConfig(1)
	cfg.Iterations = 20
	cfg.Bounds = NewBounds(-2, 2)
	cfg.RecordTrajectory = true

	f := func(x float64) float64 { return -0.1 * x * x }

	// Not symmetric around x: averaging g at x±c_n differs from g(x).
	g := func(x float64) float64 { return x * x }

	const (
		learningRate = 0.1
		stepsize     = 0.1
		alpha        = 0.25
	)

	star, err := NewStarSA(cfg, learningRate, stepsize, Response(f), Gradient(g), FixedWeight(alpha))
	require.NoError(t, err)

	res, err := star.Optimize()
	require.NoError(t, err)

	// Replay the recurrence by hand.
	current := cfg.Initial
	want := []float64{current}

	for n := 1; n <= cfg.Iterations; n++ {
		cn := stepsize / math.Pow(float64(n), 0.25)
		fd := (f(current+cn) - f(current-cn)) / cn
		direct := 0.5 * (g(current+cn) + g(current-cn))
		blended := alpha*fd + (1-alpha)*direct

		current = cfg.Bounds.Project(current + learningRate/float64(n)*blended)
		want = append(want, current)
	}

	require.Len(t, res.Trajectory, len(want))

	for n := range want {
		assert.InDelta(t, want[n], res.Trajectory[n], 1e-12, "step %d", n)
	}

	// The direct term averages g at x±c_n, not g at the iterate itself.
	x := cfg.Initial
	cn := stepsize
	atIterate := x + learningRate*(alpha*(f(x+cn)-f(x-cn))/cn+(1-alpha)*g(x))
	assert.NotEqual(t, atIterate, res.Trajectory[1])
}

func TestStarSACallsPerStep(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.Iterations = 7

	var responses, gradients int

	response := func(x float64) (float64, error) {
		responses++

		return -x * x, nil
	}

	gradient := func(x float64) (float64, error) {
		gradients++

		return -2 * x, nil
	}

	star, err := NewStarSA(cfg, 0.1, 0.1, response, gradient, nil)
	require.NoError(t, err)

	_, err = star.Optimize()
	require.NoError(t, err)

	assert.Equal(t, 14, responses)
	assert.Equal(t, 14, gradients)
}

func TestStarSANonFiniteWeight(t *testing.T) {
	q := newQuadratic(0.1, 0, 13)

	star, err := NewStarSA(DefaultConfig(1), 1, 0.1, q.response, q.gradient, FixedWeight(math.NaN()))
	require.NoError(t, err)

	_, err = star.Optimize()
	assert.ErrorIs(t, err, ErrNumeric)
}

func TestStarSARequiresGradient(t *testing.T) {
	q := newQuadratic(0.1, 0, 14)

	_, err := NewStarSA(DefaultConfig(1), 1, 0.1, q.response, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
