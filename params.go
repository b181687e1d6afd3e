package sa

import (
	"github.com/pkg/errors"
)

// Params is the union of every variant's constructor arguments. New reads
// only the fields its variant needs.
type Params struct {
	// LearningRate is the base update scale (KW, RM, StarSA, IASA).
	LearningRate float64

	// Stepsize is the base finite-difference probe width (KW, StarSA).
	Stepsize float64

	// Dx and M derive the RSA learning rate as Dx/M.
	Dx float64
	M  float64

	// Lipschitz is the ACSA smoothness constant L.
	Lipschitz float64

	// Domain replaces Config.Initial in the ACSA step scale when non-zero.
	Domain float64

	// Weight is the StarSA blend; nil means FixedWeight(DefaultWeight).
	Weight WeightFunc

	// Response is the noisy objective (KW, StarSA).
	Response ResponseFunc

	// Gradient is the noisy gradient (RM, StarSA, RSA, IASA, ACSA).
	Gradient GradientFunc
}

// New builds the optimizer for variant from p.
//
// Parameters:
// - variant: one of Variants, usually from ParseVariant
// - cfg: shared settings
// - p: constructor arguments; fields the variant does not use are ignored
//
// Returns:
// - *Optimizer: ready to run
// - error: ErrInvalidConfig for an unknown variant, plus whatever the
// variant's constructor returns
//
// Usage example:
//
//	variant, err := sa.ParseVariant("iasa")
//	if err != nil {
//	    return err
//	}
//
//	o, err := sa.New(variant, cfg, sa.Params{
//	    LearningRate: 10,
//	    Gradient:     gradient,
//	})
//
// Important notes:
//   - ACSA uses NewACSAWithDomain when p.Domain is non-zero, NewACSA otherwise
func New(variant Variant, cfg Config, p Params) (*Optimizer, error) {
	switch variant {
	case KW:
		return NewKW(cfg, p.LearningRate, p.Stepsize, p.Response)
	case RM:
		return NewRM(cfg, p.LearningRate, p.Gradient)
	case StarSA:
		return NewStarSA(cfg, p.LearningRate, p.Stepsize, p.Response, p.Gradient, p.Weight)
	case RSA:
		return NewRSA(cfg, p.Dx, p.M, p.Gradient)
	case IASA:
		return NewIASA(cfg, p.LearningRate, p.Gradient)
	case ACSA:
		if p.Domain != 0 {
			return NewACSAWithDomain(cfg, p.Lipschitz, p.Domain, p.Gradient)
		}

		return NewACSA(cfg, p.Lipschitz, p.Gradient)
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown variant %q", variant)
	}
}
