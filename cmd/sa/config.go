package main

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/facette/natsort"
	"github.com/pkg/errors"

	"github.com/thalesfsp/sa"
)

// RunFile is a TOML document of named runs:
//
//	[runs.kw1]
//	variant = "kw"
//	initial = 10
//	iterations = 1000
//	learning_rate = 10
//	stepsize = 0.1
//	lower = -50
//	upper = 50
//
//	[runs.kw1.objective]
//	a = 0.1
//	noise = 0.01
//	seed = 1
type RunFile struct {
	Runs map[string]RunConfig `toml:"runs"`
}

// RunConfig describes one solver run.
type RunConfig struct {
	Variant    string  `toml:"variant"`
	Initial    float64 `toml:"initial"`
	Iterations int     `toml:"iterations"`

	LearningRate float64 `toml:"learning_rate"`
	Stepsize     float64 `toml:"stepsize"`
	Dx           float64 `toml:"dx"`
	M            float64 `toml:"m"`
	Lipschitz    float64 `toml:"lipschitz"`
	Domain       float64 `toml:"domain"`

	// Weight fixes the StarSA blend. When unset, NoiseWeight selects the
	// variance-optimal blend from the objective noise, else the default.
	Weight      *float64 `toml:"weight"`
	NoiseWeight bool     `toml:"noise_weight"`

	Lower  *float64 `toml:"lower"`
	Upper  *float64 `toml:"upper"`
	Record bool     `toml:"record"`

	Objective Objective `toml:"objective"`
}

// Objective is the noisy concave test function
// -a*(x-center)² + noise*N(0,1), maximized at center.
type Objective struct {
	A      float64 `toml:"a"`
	Center float64 `toml:"center"`
	Noise  float64 `toml:"noise"`
	Seed   int64   `toml:"seed"`
}

const defaultCurvature = 0.1

// LoadRunFile decodes path. Unknown keys are rejected so that typos do not
// silently fall back to zero values.
func LoadRunFile(path string) (*RunFile, error) {
	var file RunFile

	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode run file %s", path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, errors.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if len(file.Runs) == 0 {
		return nil, errors.Errorf("no runs defined in %s", path)
	}

	return &file, nil
}

// Names returns the run names in natural order, so run2 sorts before run10.
func (f *RunFile) Names() []string {
	names := make([]string, 0, len(f.Runs))
	for name := range f.Runs {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		return natsort.Compare(names[i], names[j])
	})

	return names
}

// Build resolves the variant and wires the objective into its callbacks.
func (rc RunConfig) Build() (*sa.Optimizer, error) {
	variant, err := sa.ParseVariant(rc.Variant)
	if err != nil {
		return nil, err
	}

	cfg := sa.DefaultConfig(rc.Initial)
	cfg.Iterations = rc.Iterations
	cfg.RecordTrajectory = rc.Record
	cfg.Logger = logger

	if rc.Lower != nil {
		cfg.Bounds = cfg.Bounds.WithLower(*rc.Lower)
	}

	if rc.Upper != nil {
		cfg.Bounds = cfg.Bounds.WithUpper(*rc.Upper)
	}

	objective := rc.Objective
	if objective.A == 0 {
		objective.A = defaultCurvature
	}

	response, gradient := objective.callbacks()

	params := sa.Params{
		LearningRate: rc.LearningRate,
		Stepsize:     rc.Stepsize,
		Dx:           rc.Dx,
		M:            rc.M,
		Lipschitz:    rc.Lipschitz,
		Domain:       rc.Domain,
		Response:     response,
		Gradient:     gradient,
	}

	switch {
	case rc.Weight != nil:
		params.Weight = sa.FixedWeight(*rc.Weight)
	case rc.NoiseWeight:
		params.Weight = sa.VarianceWeight(objective.Noise, objective.Noise)
	}

	return sa.New(variant, cfg, params)
}

// callbacks returns a response and gradient sharing one seeded source.
func (o Objective) callbacks() (sa.ResponseFunc, sa.GradientFunc) {
	rng := rand.New(rand.NewSource(o.Seed))

	response := sa.Response(func(x float64) float64 {
		d := x - o.Center

		return -o.A*d*d + o.Noise*rng.NormFloat64()
	})

	gradient := sa.Gradient(func(x float64) float64 {
		return -2*o.A*(x-o.Center) + o.Noise*rng.NormFloat64()
	})

	return response, gradient
}
