package positions

import "github.com/bcdannyboy/crr/models"

// BarrierOption is a European option that is switched on (knock-in) or off
// (knock-out) when the underlying touches the barrier H. The barrier is
// monitored at every lattice node.
type BarrierOption struct {
	Contract
	H    float64 // Barrier level
	Type BarrierType
}

// NewBarrierOption builds a barrier contract. No check is made that H sits
// on the side of S0 implied by the barrier direction; a down-and-out with
// H above S0 simply knocks out at the root.
func NewBarrierOption(model *models.BinomialTreeModel, s0, k, h, t float64, optionType OptionType, barrierType BarrierType) (*BarrierOption, error) {
	c, err := newContract(model, s0, k, t, optionType == Call)
	if err != nil {
		return nil, err
	}
	return &BarrierOption{Contract: c, H: h, Type: barrierType}, nil
}

const (
	knockOutTrack = iota
	knockInTrack
	vanillaTrack
)

func (o *BarrierOption) Price() float64 {
	roots := o.induct()
	if o.Type.Knock == In {
		return roots[knockInTrack]
	}
	return roots[knockOutTrack]
}

// ParityKnockIn prices the knock-in leg as vanilla minus knock-out. Price
// instead keeps only the payoff reachable through touched nodes, which does
// not in general satisfy in + out = vanilla.
func (o *BarrierOption) ParityKnockIn() float64 {
	roots := o.induct()
	return roots[vanillaTrack] - roots[knockOutTrack]
}

// Touched reports whether spot is at or beyond the barrier.
func (o *BarrierOption) Touched(spot float64) bool {
	if o.Type.Direction == Up {
		return spot >= o.H
	}
	return spot <= o.H
}

// induct runs the knock-out, knock-in and vanilla tracks through one sweep.
func (o *BarrierOption) induct() []float64 {
	payoff, spots := o.terminalPayoff()

	ko := make([]float64, len(payoff))
	ki := make([]float64, len(payoff))
	vanilla := append([]float64(nil), payoff...)
	breached := make([]bool, len(payoff))

	for j, s := range spots {
		breached[j] = o.Touched(s)
		if breached[j] {
			ki[j] = payoff[j]
		} else {
			ko[j] = payoff[j]
		}
	}

	step := func(i int, spots []float64, tracks [][]float64) {
		ko, ki := tracks[knockOutTrack], tracks[knockInTrack]
		for j, s := range spots {
			hit := o.Touched(s)
			// a node is breached when it or any node below it touched
			breached[j] = hit || breached[j] || breached[j+1]
			if hit {
				ko[j] = 0
			}
			if !breached[j] {
				ki[j] = 0
			}
		}
		breached = breached[:i+1]
	}

	return backwardInduction(o.model, o.S0, [][]float64{ko, ki, vanilla}, step)
}
