package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdannyboy/crr/positions"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), ".env"), "")
	require.NoError(t, err)

	assert.Equal(t, LatticeConfig{UpFactor: 1.1, Rate: 0.05, Maturity: 1, Steps: 100}, cfg.Lattice)
	assert.Equal(t, ContractConfig{
		Style:       "european",
		Spot:        100,
		Strike:      100,
		Barrier:     90,
		OptionType:  "call",
		BarrierType: "down-and-out",
	}, cfg.Contract)
	assert.Equal(t, SimulationConfig{Paths: 100000, Seed: 1}, cfg.Simulation)
	assert.Equal(t, ConvergenceConfig{MinSteps: 10, MaxSteps: 500, Stride: 10}, cfg.Convergence)
	assert.Equal(t, LoggingConfig{Level: "info", Format: "console"}, cfg.Logging)
	assert.Empty(t, cfg.Slack.AppToken)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "crr.yaml")
	yaml := "lattice:\n  steps: 250\n  rate: 0.03\ncontract:\n  style: barrier\n  strike: 95\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CRR_SLACK_BOT_TOKEN=xoxb-test\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CRR_SLACK_BOT_TOKEN") })

	t.Setenv("CRR_LATTICE_RATE", "0.07")

	fs := pflag.NewFlagSet("price", pflag.ContinueOnError)
	fs.Float64("strike", 100, "")
	require.NoError(t, fs.Parse([]string{"--strike=105"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(fs, map[string]string{
		"strike": "contract.strike",
		"absent": "contract.spot",
	}))

	cfg, err := l.Load(envFile, path)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Lattice.Steps)
	assert.Equal(t, 0.07, cfg.Lattice.Rate)
	assert.Equal(t, "barrier", cfg.Contract.Style)
	assert.Equal(t, 105.0, cfg.Contract.Strike)
	assert.Equal(t, 100.0, cfg.Contract.Spot)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := NewLoader().Load("", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLatticeModel(t *testing.T) {
	m := LatticeConfig{UpFactor: 1.1, Rate: 0.05, Maturity: 1, Steps: 2}.Model()
	assert.Equal(t, 1.1, m.U)

	m = LatticeConfig{UpFactor: 1.1, Volatility: 0.2, Rate: 0.05, Maturity: 1, Steps: 100}.Model()
	assert.InDelta(t, math.Exp(0.02), m.U, 1e-15)
}

func TestContractSpec(t *testing.T) {
	spec, err := ContractConfig{
		Style:       "Barrier",
		Spot:        100,
		Strike:      95,
		Barrier:     120,
		OptionType:  "PUT",
		BarrierType: "up-and-in",
	}.Spec(0.5)
	require.NoError(t, err)

	assert.Equal(t, positions.ContractSpec{
		Style:       positions.Barrier,
		Spot:        100,
		Strike:      95,
		Barrier:     120,
		Maturity:    0.5,
		OptionType:  positions.Put,
		BarrierType: positions.BarrierType{Direction: positions.Up, Knock: positions.In},
	}, spec)

	_, err = ContractConfig{Style: "bermudan"}.Spec(1)
	assert.ErrorIs(t, err, positions.ErrUnknownStyle)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(LoggingConfig{Level: "loud"}, &buf)
	assert.Error(t, err)

	_, err = NewLogger(LoggingConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
