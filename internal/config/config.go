package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Target    string `mapstructure:"target" yaml:"target"`
	Seed      int64  `mapstructure:"seed" yaml:"seed"`
	RunsDir   string `mapstructure:"runs_dir" yaml:"runs_dir"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Sampling
	TrainFraction    float64 `mapstructure:"train_fraction" yaml:"train_fraction"`
	TestFraction     float64 `mapstructure:"test_fraction" yaml:"test_fraction"`
	ValidateFraction float64 `mapstructure:"validate_fraction" yaml:"validate_fraction"`
	EventRate        float64 `mapstructure:"event_rate" yaml:"event_rate"`

	// Stepwise logistic regression
	SLEntry float64 `mapstructure:"slentry" yaml:"slentry"`
	SLStay  float64 `mapstructure:"slstay" yaml:"slstay"`
	MaxIter int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tol     float64 `mapstructure:"tolerance" yaml:"tolerance"`

	// Assessment
	Cutoff   float64 `mapstructure:"cutoff" yaml:"cutoff"`
	Folds    int     `mapstructure:"folds" yaml:"folds"`
	LiftBins int     `mapstructure:"lift_bins" yaml:"lift_bins"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.scoreloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".scoreloom")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SCORELOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("target", "")
	v.SetDefault("seed", 20240605)
	v.SetDefault("delimiter", "")
	v.SetDefault("train_fraction", 0.6)
	v.SetDefault("test_fraction", 0.2)
	v.SetDefault("validate_fraction", 0.2)
	v.SetDefault("event_rate", 0.5)
	v.SetDefault("slentry", 0.05)
	v.SetDefault("slstay", 0.05)
	v.SetDefault("max_iter", 50)
	v.SetDefault("tolerance", 1e-8)
	v.SetDefault("cutoff", 0.5)
	v.SetDefault("folds", 5)
	v.SetDefault("lift_bins", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".scoreloom")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve runs_dir default: ~/.scoreloom/runs
	if c.RunsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.RunsDir = filepath.Join(home, ".scoreloom", "runs")
	}
	return &c, nil
}
