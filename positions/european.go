package positions

import "github.com/bcdannyboy/crr/models"

// EuropeanOption can only be exercised at maturity.
type EuropeanOption struct {
	Contract
}

func NewEuropeanOption(model *models.BinomialTreeModel, s0, k, t float64, isCall bool) (*EuropeanOption, error) {
	c, err := newContract(model, s0, k, t, isCall)
	if err != nil {
		return nil, err
	}
	return &EuropeanOption{Contract: c}, nil
}

// Price returns the discounted risk-neutral expectation of the maturity
// payoff.
func (o *EuropeanOption) Price() float64 {
	payoff, _ := o.terminalPayoff()
	return backwardInduction(o.model, o.S0, [][]float64{payoff}, nil)[0]
}
