package cmd

import (
	"fmt"

	"github.com/KaramelBytes/scoreloom/internal/sampling"
	"github.com/spf13/cobra"
)

var (
	balTarget    string
	balDelimiter string
	balRate      float64
	balOutput    string
)

var balanceCmd = &cobra.Command{
	Use:   "balance <file>",
	Short: "Balance classes by oversampling the minority class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFrame(args[0], balTarget, balDelimiter)
		if err != nil {
			return err
		}
		if f.Target() == "" {
			return fmt.Errorf("--target is required")
		}
		rate := balRate
		if !cmd.Flags().Changed("event-rate") && cfg != nil {
			rate = cfg.EventRate
		}
		before := f.Rows()
		balanced, err := sampling.Oversample(f, rate, effectiveSeed())
		if err != nil {
			return err
		}
		out := balOutput
		if out == "" {
			out = "balanced.csv"
		}
		if err := balanced.WriteCSV(out); err != nil {
			return err
		}
		fmt.Printf("✓ Oversampled %d -> %d rows (target event rate %.2f), wrote %s\n",
			before, balanced.Rows(), rate, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&balTarget, "target", "t", "", "binary response column")
	balanceCmd.Flags().StringVar(&balDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	balanceCmd.Flags().Float64Var(&balRate, "event-rate", 0.5, "desired event rate after oversampling")
	balanceCmd.Flags().StringVarP(&balOutput, "output", "o", "", "output CSV path (default balanced.csv)")
}
