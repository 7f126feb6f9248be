package positions

import (
	"math"

	"github.com/bcdannyboy/crr/models"
)

// AmericanOption can be exercised at any node of the lattice.
type AmericanOption struct {
	Contract
}

func NewAmericanOption(model *models.BinomialTreeModel, s0, k, t float64, isCall bool) (*AmericanOption, error) {
	c, err := newContract(model, s0, k, t, isCall)
	if err != nil {
		return nil, err
	}
	return &AmericanOption{Contract: c}, nil
}

// Price values the option with optimal early exercise at every node,
// including the root.
func (o *AmericanOption) Price() float64 {
	payoff, _ := o.terminalPayoff()
	return backwardInduction(o.model, o.S0, [][]float64{payoff}, o.exercise)[0]
}

// exercise compares continuation with intrinsic value at the step's own
// spot prices.
func (o *AmericanOption) exercise(_ int, spots []float64, tracks [][]float64) {
	v := tracks[0]
	for j, s := range spots {
		v[j] = math.Max(v[j], o.IntrinsicValue(s))
	}
}
