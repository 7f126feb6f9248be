package positions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// blackScholes is the closed-form European price the lattice converges to.
func blackScholes(s, k, t, r, sigma float64, isCall bool) float64 {
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)

	n := distuv.UnitNormal
	if isCall {
		return s*n.CDF(d1) - k*math.Exp(-r*t)*n.CDF(d2)
	}
	return k*math.Exp(-r*t)*n.CDF(-d2) - s*n.CDF(-d1)
}
