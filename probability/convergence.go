package probability

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bcdannyboy/crr/models"
	"github.com/bcdannyboy/crr/positions"
)

// ConvergenceStudy reprices one contract on CRR lattices of increasing size,
// each with u = exp(sigma*sqrt(dt)).
type ConvergenceStudy struct {
	Spec    positions.ContractSpec
	Sigma   float64 // Annualised volatility
	Rate    float64
	Steps   []int
	Workers int // 0 uses every logical CPU

	// OnPoint, if set, is called from the worker goroutines after each
	// lattice is priced.
	OnPoint func(ConvergencePoint)
	Logger  *zap.Logger
}

type ConvergencePoint struct {
	Steps    int     `json:"steps"`
	UpFactor float64 `json:"up_factor"`
	Price    float64 `json:"price"`
}

// StepRange lists min, min+stride, ... up to and including max.
func StepRange(min, max, stride int) []int {
	if stride < 1 {
		stride = 1
	}
	var steps []int
	for n := min; n <= max; n += stride {
		steps = append(steps, n)
	}
	return steps
}

// RunConvergence prices the contract for every step count in the study and
// returns the points in the order of Steps.
func RunConvergence(ctx context.Context, study ConvergenceStudy) ([]ConvergencePoint, error) {
	logger := study.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	points := make([]ConvergencePoint, len(study.Steps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(study.Workers))
	for idx, n := range study.Steps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			model := models.NewCRRModel(study.Sigma, study.Rate, study.Spec.Maturity, n)
			pricer, err := positions.NewPricer(model, study.Spec)
			if err != nil {
				return errors.Wrapf(err, "steps=%d", n)
			}

			points[idx] = ConvergencePoint{
				Steps:    n,
				UpFactor: model.U,
				Price:    pricer.Price(),
			}
			logger.Debug("lattice priced",
				zap.Int("steps", n),
				zap.Float64("price", points[idx].Price))
			if study.OnPoint != nil {
				study.OnPoint(points[idx])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("convergence study complete",
		zap.String("style", study.Spec.Style.String()),
		zap.Int("lattices", len(points)))
	return points, nil
}
