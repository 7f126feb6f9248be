package positions

import "github.com/bcdannyboy/crr/models"

// ContractSpec describes any of the supported contracts in one value, as
// read from flags or chat commands.
type ContractSpec struct {
	Style       Style
	Spot        float64
	Strike      float64
	Barrier     float64 // Only used by barrier contracts
	Maturity    float64
	OptionType  OptionType
	BarrierType BarrierType
}

// NewPricer builds the contract described by spec on top of model.
func NewPricer(model *models.BinomialTreeModel, spec ContractSpec) (Pricer, error) {
	isCall := spec.OptionType == Call

	var (
		p   Pricer
		err error
	)
	switch spec.Style {
	case European:
		var o *EuropeanOption
		o, err = NewEuropeanOption(model, spec.Spot, spec.Strike, spec.Maturity, isCall)
		p = o
	case American:
		var o *AmericanOption
		o, err = NewAmericanOption(model, spec.Spot, spec.Strike, spec.Maturity, isCall)
		p = o
	case Barrier:
		var o *BarrierOption
		o, err = NewBarrierOption(model, spec.Spot, spec.Strike, spec.Barrier, spec.Maturity, spec.OptionType, spec.BarrierType)
		p = o
	default:
		return nil, ErrUnknownStyle
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
