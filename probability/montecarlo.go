package probability

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bcdannyboy/crr/models"
	"github.com/bcdannyboy/crr/positions"
)

const cancelCheckInterval = 1024

var ErrNoPaths = errors.New("simulation needs at least one path")

// Simulation samples paths of the same risk-neutral lattice the pricers
// induct over, as an independent check of their prices. Each worker owns a
// generator seeded with Seed plus its index, so a fixed Workers value gives
// reproducible estimates.
type Simulation struct {
	Paths   int
	Seed    uint64
	Workers int // 0 uses every logical CPU
	Logger  *zap.Logger
}

// Estimate is a discounted Monte Carlo mean with its standard error.
type Estimate struct {
	Price    float64 `json:"price"`
	StdError float64 `json:"std_error"`
	Paths    int     `json:"paths"`
}

type BarrierEstimate struct {
	KnockOut Estimate `json:"knock_out"`
	KnockIn  Estimate `json:"knock_in"` // Payoff of paths that touched the barrier
}

type accumulator struct {
	sum   float64
	sumSq float64
	n     int
}

func (a *accumulator) add(x float64) {
	a.sum += x
	a.sumSq += x * x
	a.n++
}

func (a *accumulator) merge(b accumulator) {
	a.sum += b.sum
	a.sumSq += b.sumSq
	a.n += b.n
}

func (a accumulator) estimate(discount float64) Estimate {
	if a.n == 0 {
		return Estimate{Price: math.NaN(), StdError: math.NaN()}
	}
	n := float64(a.n)
	mean := a.sum / n
	se := 0.0
	if a.n > 1 {
		variance := (a.sumSq - n*mean*mean) / (n - 1)
		se = math.Sqrt(math.Max(variance, 0) / n)
	}
	return Estimate{Price: discount * mean, StdError: discount * se, Paths: a.n}
}

// European draws the number of up moves of each path from Binomial(N, q) and
// averages the discounted maturity payoff.
func (s Simulation) European(ctx context.Context, o *positions.EuropeanOption) (Estimate, error) {
	m := o.Model()
	if err := s.check(m); err != nil {
		return Estimate{}, err
	}

	acc, err := s.run(ctx, func(ctx context.Context, seed uint64, paths int) ([]accumulator, error) {
		ups := distuv.Binomial{N: float64(m.NumSteps), P: m.Q, Src: rand.NewSource(seed)}

		var a accumulator
		for p := 0; p < paths; p++ {
			if p%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			j := int(ups.Rand())
			a.add(o.IntrinsicValue(m.SpotAt(o.S0, m.NumSteps, j)))
		}
		return []accumulator{a}, nil
	})
	if err != nil {
		return Estimate{}, err
	}

	est := acc[0].estimate(math.Pow(m.Df, float64(m.NumSteps)))
	s.logger().Debug("european simulation done",
		zap.Int("paths", est.Paths),
		zap.Float64("price", est.Price),
		zap.Float64("std_error", est.StdError))
	return est, nil
}

// Barrier walks every path node by node, monitoring the barrier at each
// step from the root to maturity.
func (s Simulation) Barrier(ctx context.Context, o *positions.BarrierOption) (BarrierEstimate, error) {
	m := o.Model()
	if err := s.check(m); err != nil {
		return BarrierEstimate{}, err
	}

	acc, err := s.run(ctx, func(ctx context.Context, seed uint64, paths int) ([]accumulator, error) {
		rng := rand.New(rand.NewSource(seed))

		legs := make([]accumulator, 2)
		for p := 0; p < paths; p++ {
			if p%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}

			j := 0
			touched := o.Touched(o.S0)
			for i := 1; i <= m.NumSteps; i++ {
				if rng.Float64() < m.Q {
					j++
				}
				touched = touched || o.Touched(m.SpotAt(o.S0, i, j))
			}

			payoff := o.IntrinsicValue(m.SpotAt(o.S0, m.NumSteps, j))
			if touched {
				legs[0].add(0)
				legs[1].add(payoff)
			} else {
				legs[0].add(payoff)
				legs[1].add(0)
			}
		}
		return legs, nil
	})
	if err != nil {
		return BarrierEstimate{}, err
	}

	discount := math.Pow(m.Df, float64(m.NumSteps))
	est := BarrierEstimate{
		KnockOut: acc[0].estimate(discount),
		KnockIn:  acc[1].estimate(discount),
	}
	s.logger().Debug("barrier simulation done",
		zap.String("barrier", o.Type.String()),
		zap.Int("paths", est.KnockOut.Paths),
		zap.Float64("knock_out", est.KnockOut.Price),
		zap.Float64("knock_in", est.KnockIn.Price))
	return est, nil
}

func (s Simulation) check(m *models.BinomialTreeModel) error {
	if s.Paths < 1 {
		return ErrNoPaths
	}
	if err := m.Hazards(); err != nil {
		return errors.Wrap(err, "cannot simulate a degenerate lattice")
	}
	return nil
}

func (s Simulation) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// pathWorker simulates paths from its own seed and returns one accumulator
// per priced leg.
type pathWorker func(ctx context.Context, seed uint64, paths int) ([]accumulator, error)

// run fans the paths out over the workers and merges their accumulators in
// worker order, so the result does not depend on scheduling.
func (s Simulation) run(ctx context.Context, work pathWorker) ([]accumulator, error) {
	shares := splitPaths(s.Paths, workerCount(s.Workers))
	partials := make([][]accumulator, len(shares))

	g, gctx := errgroup.WithContext(ctx)
	for w, paths := range shares {
		seed := s.Seed + uint64(w)
		g.Go(func() error {
			legs, err := work(gctx, seed, paths)
			if err != nil {
				return err
			}
			partials[w] = legs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]accumulator, len(partials[0]))
	for _, legs := range partials {
		for k := range legs {
			merged[k].merge(legs[k])
		}
	}
	return merged, nil
}
