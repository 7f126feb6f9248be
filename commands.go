package main

import (
	"math"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/bcdannyboy/crr/models"
	"github.com/bcdannyboy/crr/positions"
	"github.com/bcdannyboy/crr/probability"
	crrslack "github.com/bcdannyboy/crr/slack"
)

func addLatticeFlags(fs *pflag.FlagSet) {
	fs.Float64("up", 1.1, "up factor per step")
	fs.Float64("vol", 0, "annualised volatility; when set, the up factor is exp(vol*sqrt(dt))")
	fs.Float64("rate", 0.05, "continuously compounded risk-free rate")
	fs.Float64("maturity", 1, "maturity in years")
	fs.Int("steps", 100, "number of lattice steps")
}

func addContractFlags(fs *pflag.FlagSet) {
	fs.String("style", "european", "exercise style (european, american, barrier)")
	fs.Float64("spot", 100, "spot price of the underlying")
	fs.Float64("strike", 100, "strike price")
	fs.Float64("barrier", 90, "barrier level")
	fs.String("option-type", "call", "call or put")
	fs.String("barrier-type", "down-and-out", "down-and-out, down-and-in, up-and-out or up-and-in")
}

func init() {
	for _, cmd := range []*cobra.Command{priceCmd, simulateCmd} {
		addLatticeFlags(cmd.Flags())
		addContractFlags(cmd.Flags())
	}

	simulateCmd.Flags().Int("paths", 100000, "number of simulated paths")
	simulateCmd.Flags().Uint64("seed", 1, "seed of the first worker")
	simulateCmd.Flags().Int("workers", 0, "simulation workers (0 uses every CPU)")

	convergeCmd.Flags().Float64("vol", 0, "annualised volatility (required)")
	convergeCmd.Flags().Float64("rate", 0.05, "continuously compounded risk-free rate")
	convergeCmd.Flags().Float64("maturity", 1, "maturity in years")
	addContractFlags(convergeCmd.Flags())
	convergeCmd.Flags().Int("min-steps", 10, "smallest lattice")
	convergeCmd.Flags().Int("max-steps", 500, "largest lattice")
	convergeCmd.Flags().Int("stride", 10, "step increment")
	convergeCmd.Flags().Int("workers", 0, "concurrent lattices (0 uses every CPU)")
}

type latticeSummary struct {
	UpFactor   float64 `json:"up_factor"`
	DownFactor float64 `json:"down_factor"`
	Rate       float64 `json:"rate"`
	Maturity   float64 `json:"maturity"`
	Steps      int     `json:"steps"`
	Q          float64 `json:"q"`
	Discount   float64 `json:"discount_per_step"`
}

type contractSummary struct {
	Style       string  `json:"style"`
	OptionType  string  `json:"option_type"`
	Spot        float64 `json:"spot"`
	Strike      float64 `json:"strike"`
	Barrier     float64 `json:"barrier,omitempty"`
	BarrierType string  `json:"barrier_type,omitempty"`
}

type priceResult struct {
	Contract      contractSummary `json:"contract"`
	Lattice       latticeSummary  `json:"lattice"`
	Price         *float64        `json:"price"` // null when the lattice is degenerate
	ParityKnockIn *float64        `json:"parity_knock_in,omitempty"`
	Hazards       []string        `json:"hazards,omitempty"`
}

type simulationResult struct {
	Contract    contractSummary              `json:"contract"`
	Lattice     latticeSummary               `json:"lattice"`
	LatticeRoot float64                      `json:"lattice_price"`
	Estimate    *probability.Estimate        `json:"estimate,omitempty"`
	Barrier     *probability.BarrierEstimate `json:"barrier_estimate,omitempty"`
}

func summarize(m *models.BinomialTreeModel, spec positions.ContractSpec) (contractSummary, latticeSummary) {
	c := contractSummary{
		Style:      spec.Style.String(),
		OptionType: spec.OptionType.String(),
		Spot:       spec.Spot,
		Strike:     spec.Strike,
	}
	if spec.Style == positions.Barrier {
		c.Barrier = spec.Barrier
		c.BarrierType = spec.BarrierType.String()
	}
	l := latticeSummary{
		UpFactor:   m.U,
		DownFactor: m.D,
		Rate:       m.R,
		Maturity:   m.T,
		Steps:      m.NumSteps,
		Q:          m.Q,
		Discount:   m.Df,
	}
	return c, l
}

// configuredContract builds the lattice and the contract from the loaded
// config, logging any lattice hazards.
func configuredContract() (*models.BinomialTreeModel, positions.ContractSpec, []string, error) {
	m := cfg.Lattice.Model()
	spec, err := cfg.Contract.Spec(cfg.Lattice.Maturity)
	if err != nil {
		return nil, positions.ContractSpec{}, nil, err
	}

	var hazards []string
	for _, h := range multierr.Errors(m.Hazards()) {
		logger.Warn("degenerate lattice", zap.Error(h))
		hazards = append(hazards, h.Error())
	}
	return m, spec, hazards, nil
}

// finite drops NaN and infinities, which JSON cannot carry.
func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}
	out = append(out, '\n')
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price one contract by backward induction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, spec, hazards, err := configuredContract()
		if err != nil {
			return err
		}
		pricer, err := positions.NewPricer(m, spec)
		if err != nil {
			return err
		}

		price := pricer.Price()
		res := priceResult{Price: finite(price), Hazards: hazards}
		res.Contract, res.Lattice = summarize(m, spec)
		if b, ok := pricer.(*positions.BarrierOption); ok && b.Type.Knock == positions.In {
			res.ParityKnockIn = finite(b.ParityKnockIn())
		}

		logger.Info("priced",
			zap.String("style", res.Contract.Style),
			zap.Int("steps", m.NumSteps),
			zap.Float64("price", price))
		return writeJSON(cmd, res)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Cross-check a European or barrier price by sampling lattice paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		m, spec, _, err := configuredContract()
		if err != nil {
			return err
		}
		pricer, err := positions.NewPricer(m, spec)
		if err != nil {
			return err
		}

		sim := probability.Simulation{
			Paths:   cfg.Simulation.Paths,
			Seed:    cfg.Simulation.Seed,
			Workers: cfg.Simulation.Workers,
			Logger:  logger,
		}

		res := simulationResult{LatticeRoot: pricer.Price()}
		res.Contract, res.Lattice = summarize(m, spec)
		switch o := pricer.(type) {
		case *positions.EuropeanOption:
			est, err := sim.European(ctx, o)
			if err != nil {
				return err
			}
			res.Estimate = &est
		case *positions.BarrierOption:
			est, err := sim.Barrier(ctx, o)
			if err != nil {
				return err
			}
			res.Barrier = &est
		default:
			return errors.Errorf("simulation supports european and barrier contracts, not %s", spec.Style)
		}
		return writeJSON(cmd, res)
	},
}

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Reprice a contract on CRR lattices of increasing size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if cfg.Lattice.Volatility <= 0 {
			return errors.New("converge needs a positive --vol or CRR_LATTICE_VOLATILITY")
		}
		spec, err := cfg.Contract.Spec(cfg.Lattice.Maturity)
		if err != nil {
			return err
		}
		steps := probability.StepRange(cfg.Convergence.MinSteps, cfg.Convergence.MaxSteps, cfg.Convergence.Stride)
		if len(steps) == 0 {
			return errors.Errorf("no step counts between %d and %d", cfg.Convergence.MinSteps, cfg.Convergence.MaxSteps)
		}

		p := mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(cmd.ErrOrStderr()))
		bar := p.AddBar(int64(len(steps)),
			mpb.PrependDecorators(
				decor.Name("Lattices"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)

		points, err := probability.RunConvergence(ctx, probability.ConvergenceStudy{
			Spec:    spec,
			Sigma:   cfg.Lattice.Volatility,
			Rate:    cfg.Lattice.Rate,
			Steps:   steps,
			Workers: cfg.Simulation.Workers,
			OnPoint: func(probability.ConvergencePoint) { bar.Increment() },
			Logger:  logger,
		})
		if err != nil {
			bar.Abort(false)
		}
		p.Wait()
		if err != nil {
			return err
		}
		return writeJSON(cmd, points)
	},
}

var slackCmd = &cobra.Command{
	Use:   "slack",
	Short: "Serve the /crr slash command over Slack socket mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Slack.AppToken == "" || cfg.Slack.BotToken == "" {
			return errors.New("slack needs CRR_SLACK_APP_TOKEN and CRR_SLACK_BOT_TOKEN")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		bot := crrslack.NewSlackBot(cfg.Slack.AppToken, cfg.Slack.BotToken, logger.Named("slack"))
		return bot.Start(ctx)
	},
}
