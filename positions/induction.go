package positions

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/bcdannyboy/crr/models"
)

// inductionStep adjusts the already discounted tracks at step i in place.
// spots holds the i+1 underlying prices of that step.
type inductionStep func(i int, spots []float64, tracks [][]float64)

// backwardInduction rolls every value track from maturity back to the root
// and returns the root value of each track. Each track must start with the
// NumSteps+1 maturity values; the slices are reused as scratch space.
func backwardInduction(m *models.BinomialTreeModel, s0 float64, tracks [][]float64, step inductionStep) []float64 {
	roots := make([]float64, len(tracks))
	if m.NumSteps < 0 {
		for k := range roots {
			roots[k] = math.NaN()
		}
		return roots
	}

	scratch := make([]float64, m.NumSteps+1)
	var spots []float64

	for i := m.NumSteps - 1; i >= 0; i-- {
		next := scratch[:i+1]
		for k, v := range tracks {
			// df * (q*V_up + (1-q)*V_down) over adjacent pairs
			floats.ScaleTo(next, 1-m.Q, v[:i+1])
			floats.AddScaled(next, m.Q, v[1:i+2])
			floats.Scale(m.Df, next)
			tracks[k] = v[:copy(v, next)]
		}

		if step != nil {
			spots = m.Spots(s0, i, spots)
			step(i, spots, tracks)
		}
	}

	for k, v := range tracks {
		roots[k] = v[0]
	}
	return roots
}
