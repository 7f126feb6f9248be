package positions

import "math"

// IntrinsicValue is the payoff of exercising at the given spot.
func (c Contract) IntrinsicValue(spot float64) float64 {
	if c.IsCall {
		return math.Max(spot-c.K, 0)
	}
	return math.Max(c.K-spot, 0)
}

// terminalPayoff returns the vanilla payoff at each maturity node together
// with the maturity spot prices.
func (c Contract) terminalPayoff() (payoff, spots []float64) {
	spots = c.model.Spots(c.S0, c.model.NumSteps, nil)
	payoff = make([]float64, len(spots))
	for j, s := range spots {
		payoff[j] = c.IntrinsicValue(s)
	}
	return payoff, spots
}
