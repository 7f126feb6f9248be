package probability

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdannyboy/crr/positions"
)

func TestStepRange(t *testing.T) {
	assert.Equal(t, []int{10, 20, 30, 40, 50}, StepRange(10, 50, 10))
	assert.Equal(t, []int{10, 25}, StepRange(10, 30, 15))
	assert.Equal(t, []int{1, 2, 3}, StepRange(1, 3, 0))
	assert.Empty(t, StepRange(5, 1, 1))
}

func TestRunConvergence(t *testing.T) {
	var seen atomic.Int32
	study := ConvergenceStudy{
		Spec: positions.ContractSpec{
			Style:      positions.European,
			Spot:       100,
			Strike:     100,
			Maturity:   1,
			OptionType: positions.Call,
		},
		Sigma:   0.2,
		Rate:    0.05,
		Steps:   []int{400, 50, 100, 200},
		Workers: 2,
		OnPoint: func(ConvergencePoint) { seen.Add(1) },
	}

	points, err := RunConvergence(context.Background(), study)
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.EqualValues(t, 4, seen.Load())

	for i, p := range points {
		assert.Equal(t, study.Steps[i], p.Steps)
		assert.InDelta(t, math.Exp(0.2*math.Sqrt(1/float64(p.Steps))), p.UpFactor, 1e-15)
	}
	assert.InDelta(t, 10.410691540732644, points[1].Price, 1e-9)

	// CRR error against Black-Scholes shrinks roughly as 1/N
	const blackScholes = 10.450583572185565
	for _, i := range []int{1, 2, 3, 0} {
		assert.Less(t, math.Abs(points[i].Price-blackScholes), 2.5/float64(points[i].Steps))
	}
}

func TestRunConvergenceAmerican(t *testing.T) {
	points, err := RunConvergence(context.Background(), ConvergenceStudy{
		Spec: positions.ContractSpec{
			Style:      positions.American,
			Spot:       100,
			Strike:     100,
			Maturity:   1,
			OptionType: positions.Put,
		},
		Sigma: 0.2,
		Rate:  0.05,
		Steps: []int{50},
	})
	require.NoError(t, err)
	require.Len(t, points, 1)

	assert.InDelta(t, 6.073727985724901, points[0].Price, 1e-9)
}

func TestRunConvergenceErrors(t *testing.T) {
	study := ConvergenceStudy{
		Spec:  positions.ContractSpec{Style: positions.Style(9), Spot: 100, Strike: 100, Maturity: 1},
		Sigma: 0.2,
		Rate:  0.05,
		Steps: []int{10, 20},
	}
	_, err := RunConvergence(context.Background(), study)
	assert.ErrorIs(t, err, positions.ErrUnknownStyle)

	study.Spec.Style = positions.American
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunConvergence(ctx, study)
	assert.ErrorIs(t, err, context.Canceled)
}
