package models

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// BinomialTreeModel holds the per-step parameters of a Cox-Ross-Rubinstein
// recombining lattice. It is read-only once built and can be shared by any
// number of contracts.
type BinomialTreeModel struct {
	U        float64 // Up factor per step
	D        float64 // Down factor per step, 1/U
	R        float64 // Continuously compounded risk-free rate
	T        float64 // Maturity in years
	NumSteps int     // Number of time steps

	Dt float64 // Time increment, T/NumSteps
	Df float64 // Discount factor per step
	Q  float64 // Risk-neutral probability of an up move
}

// NewBinomialTreeModel derives the lattice parameters from the up factor, the
// rate, the maturity and the number of steps. Nothing is validated: a zero
// step count or an up factor at or below one yields Inf/NaN or an
// out-of-range probability, see Hazards.
func NewBinomialTreeModel(u, r, t float64, numSteps int) *BinomialTreeModel {
	d := 1 / u
	dt := t / float64(numSteps)

	return &BinomialTreeModel{
		U:        u,
		D:        d,
		R:        r,
		T:        t,
		NumSteps: numSteps,
		Dt:       dt,
		Df:       math.Exp(-r * dt),
		Q:        (math.Exp(r*dt) - d) / (u - d),
	}
}

// NewCRRModel builds the lattice with the up factor implied by sigma.
func NewCRRModel(sigma, r, t float64, numSteps int) *BinomialTreeModel {
	return NewBinomialTreeModel(UpFactorFromVolatility(sigma, t, numSteps), r, t, numSteps)
}

// UpFactorFromVolatility returns exp(sigma*sqrt(dt)), the CRR up factor for
// an annualised volatility sigma.
func UpFactorFromVolatility(sigma, t float64, numSteps int) float64 {
	return math.Exp(sigma * math.Sqrt(t/float64(numSteps)))
}

// SpotAt returns the underlying price at node j of step i.
func (m *BinomialTreeModel) SpotAt(s0 float64, i, j int) float64 {
	return s0 * math.Pow(m.U, float64(j)) * math.Pow(m.D, float64(i-j))
}

// Spots fills dst with the i+1 underlying prices at step i and returns it.
// dst is grown when it is too short.
func (m *BinomialTreeModel) Spots(s0 float64, i int, dst []float64) []float64 {
	if i < 0 {
		return dst[:0]
	}
	if cap(dst) < i+1 {
		dst = make([]float64, i+1)
	}
	dst = dst[:i+1]
	for j := range dst {
		dst[j] = m.SpotAt(s0, i, j)
	}
	return dst
}

// Hazards reports parameter combinations that make the lattice meaningless.
// Pricing never consults it.
func (m *BinomialTreeModel) Hazards() error {
	var err error

	if m.NumSteps < 1 {
		err = multierr.Append(err, errors.Errorf("number of steps must be at least 1, got %d", m.NumSteps))
	}
	if !(m.U > 1) {
		err = multierr.Append(err, errors.Errorf("up factor must be greater than 1, got %g", m.U))
	}
	if !(m.Q > 0 && m.Q < 1) {
		err = multierr.Append(err, errors.Errorf("risk-neutral probability %g is outside (0, 1)", m.Q))
	}
	derived := []struct {
		name  string
		value float64
	}{
		{"d", m.D},
		{"dt", m.Dt},
		{"df", m.Df},
	}
	for _, p := range derived {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			err = multierr.Append(err, errors.Errorf("derived %s is not finite: %g", p.name, p.value))
		}
	}

	return err
}
