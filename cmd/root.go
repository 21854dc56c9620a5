package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/scoreloom/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags (wired later to config/viper)
	cfgFile  string
	debug    bool
	flagSeed int64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "scoreloom",
	Short: "scoreloom: cross-validated binary-scorecard modeling from CSV datasets",
	Long: `scoreloom loads a CSV or XLSX dataset, explores it, balances classes by
oversampling, partitions into train/test/validate, fits a stepwise logistic
regression, scores the test set, cross-validates against the held-out
partition, and renders the results as a formatted HTML report.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.scoreloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "random seed for sampling steps (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	if rootCmd.PersistentFlags().Changed("seed") {
		cfg.Seed = flagSeed
	}
}

// effectiveSeed resolves the sampling seed from flag or config.
func effectiveSeed() int64 {
	if rootCmd.PersistentFlags().Changed("seed") {
		return flagSeed
	}
	if cfg != nil {
		return cfg.Seed
	}
	return 0
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
