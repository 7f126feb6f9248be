// Package config loads runtime settings from an optional .env file, an
// optional YAML file and CRR_* environment variables, in that order of
// increasing precedence. Command-line flags bound with BindFlags win over all
// of them.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bcdannyboy/crr/models"
	"github.com/bcdannyboy/crr/positions"
)

const EnvPrefix = "CRR"

type Config struct {
	Lattice     LatticeConfig     `mapstructure:"lattice"`
	Contract    ContractConfig    `mapstructure:"contract"`
	Simulation  SimulationConfig  `mapstructure:"simulation"`
	Convergence ConvergenceConfig `mapstructure:"convergence"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Slack       SlackConfig       `mapstructure:"slack"`
}

type LatticeConfig struct {
	UpFactor   float64 `mapstructure:"up_factor"`
	Volatility float64 `mapstructure:"volatility"` // When positive, replaces up_factor with exp(vol*sqrt(dt))
	Rate       float64 `mapstructure:"rate"`
	Maturity   float64 `mapstructure:"maturity"`
	Steps      int     `mapstructure:"steps"`
}

type ContractConfig struct {
	Style       string  `mapstructure:"style"`
	Spot        float64 `mapstructure:"spot"`
	Strike      float64 `mapstructure:"strike"`
	Barrier     float64 `mapstructure:"barrier"`
	OptionType  string  `mapstructure:"option_type"`
	BarrierType string  `mapstructure:"barrier_type"`
}

type SimulationConfig struct {
	Paths   int    `mapstructure:"paths"`
	Seed    uint64 `mapstructure:"seed"`
	Workers int    `mapstructure:"workers"`
}

type ConvergenceConfig struct {
	MinSteps int `mapstructure:"min_steps"`
	MaxSteps int `mapstructure:"max_steps"`
	Stride   int `mapstructure:"stride"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

type SlackConfig struct {
	AppToken string `mapstructure:"app_token"`
	BotToken string `mapstructure:"bot_token"`
}

// Loader accumulates flag bindings before reading the configuration.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlags maps flag names onto configuration keys. Flags missing from fs
// are skipped so commands only bind what they declare.
func (l *Loader) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding flag --%s", name)
		}
	}
	return nil
}

// Load reads envFile (default .env, if present) into the process environment and then the
// YAML file at path. An empty path searches ./crr.yaml and
// $HOME/.crr/crr.yaml, and a missing file is not an error.
func (l *Loader) Load(envFile, path string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "loading %s", envFile)
	}

	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("crr")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(home + "/.crr")
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lattice.up_factor", 1.1)
	v.SetDefault("lattice.volatility", 0.0)
	v.SetDefault("lattice.rate", 0.05)
	v.SetDefault("lattice.maturity", 1.0)
	v.SetDefault("lattice.steps", 100)

	v.SetDefault("contract.style", "european")
	v.SetDefault("contract.spot", 100.0)
	v.SetDefault("contract.strike", 100.0)
	v.SetDefault("contract.barrier", 90.0)
	v.SetDefault("contract.option_type", "call")
	v.SetDefault("contract.barrier_type", "down-and-out")

	v.SetDefault("simulation.paths", 100000)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.workers", 0)

	v.SetDefault("convergence.min_steps", 10)
	v.SetDefault("convergence.max_steps", 500)
	v.SetDefault("convergence.stride", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("slack.app_token", "")
	v.SetDefault("slack.bot_token", "")
}

// Model builds the lattice described by the config.
func (c LatticeConfig) Model() *models.BinomialTreeModel {
	if c.Volatility > 0 {
		return models.NewCRRModel(c.Volatility, c.Rate, c.Maturity, c.Steps)
	}
	return models.NewBinomialTreeModel(c.UpFactor, c.Rate, c.Maturity, c.Steps)
}

// Spec converts the contract settings, taking the maturity from the lattice.
func (c ContractConfig) Spec(maturity float64) (positions.ContractSpec, error) {
	style, err := positions.ParseStyle(c.Style)
	if err != nil {
		return positions.ContractSpec{}, err
	}
	return positions.ContractSpec{
		Style:       style,
		Spot:        c.Spot,
		Strike:      c.Strike,
		Barrier:     c.Barrier,
		Maturity:    maturity,
		OptionType:  positions.ParseOptionType(c.OptionType),
		BarrierType: positions.ParseBarrierType(c.BarrierType),
	}, nil
}
