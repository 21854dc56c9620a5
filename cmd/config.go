package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/scoreloom/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Scoreloom configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file populated with the current defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if c == nil {
			loaded, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			c = loaded
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		if cfgFile != "" {
			fmt.Printf("✓ Wrote config to %s\n", cfgFile)
		} else {
			fmt.Println("✓ Wrote config to ~/.scoreloom/config.yaml")
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		if cfg.Target != "" {
			fmt.Printf("target: %s\n", cfg.Target)
		}
		fmt.Printf("seed: %d\n", cfg.Seed)
		fmt.Printf("runs_dir: %s\n", cfg.RunsDir)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %s\n", cfg.Delimiter)
		}
		fmt.Printf("train_fraction: %.3f\n", cfg.TrainFraction)
		fmt.Printf("test_fraction: %.3f\n", cfg.TestFraction)
		fmt.Printf("validate_fraction: %.3f\n", cfg.ValidateFraction)
		fmt.Printf("event_rate: %.3f\n", cfg.EventRate)
		fmt.Printf("slentry: %.3f\n", cfg.SLEntry)
		fmt.Printf("slstay: %.3f\n", cfg.SLStay)
		fmt.Printf("max_iter: %d\n", cfg.MaxIter)
		fmt.Printf("tolerance: %g\n", cfg.Tol)
		fmt.Printf("cutoff: %.3f\n", cfg.Cutoff)
		fmt.Printf("folds: %d\n", cfg.Folds)
		fmt.Printf("lift_bins: %d\n", cfg.LiftBins)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "target":
			cfg.Target = val
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		case "runs_dir":
			cfg.RunsDir = val
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "train_fraction", "test_fraction", "validate_fraction", "event_rate",
			"slentry", "slstay", "cutoff":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 || f > 1 {
				return fmt.Errorf("invalid fraction for %s: %v (want 0..1)", key, val)
			}
			switch key {
			case "train_fraction":
				cfg.TrainFraction = f
			case "test_fraction":
				cfg.TestFraction = f
			case "validate_fraction":
				cfg.ValidateFraction = f
			case "event_rate":
				cfg.EventRate = f
			case "slentry":
				cfg.SLEntry = f
			case "slstay":
				cfg.SLStay = f
			case "cutoff":
				cfg.Cutoff = f
			}
		case "tolerance":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for tolerance: %v", val)
			}
			cfg.Tol = f
		case "max_iter":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for max_iter: %v", val)
			}
			cfg.MaxIter = i
		case "folds":
			i, err := strconv.Atoi(val)
			if err != nil || i < 2 {
				return fmt.Errorf("invalid int for folds: %v (want >= 2)", val)
			}
			cfg.Folds = i
		case "lift_bins":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for lift_bins: %v", val)
			}
			cfg.LiftBins = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
