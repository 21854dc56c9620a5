package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/scoreloom/internal/explore"
	"github.com/spf13/cobra"
)

var (
	expTarget     string
	expDelimiter  string
	expOutputPath string
	expCorr       bool
	expOutliers   bool
	expOutlierThr float64
	expTopValues  int
)

var exploreCmd = &cobra.Command{
	Use:   "explore <file>",
	Short: "Explore a dataset: summary statistics, cardinality, correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFrame(args[0], expTarget, expDelimiter)
		if err != nil {
			return err
		}
		opt := explore.DefaultOptions()
		opt.Correlations = expCorr
		opt.TopValues = expTopValues
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = expOutliers
		}
		if expOutlierThr > 0 {
			opt.OutlierThreshold = expOutlierThr
		}
		rep, err := explore.Describe(f, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if expOutputPath != "" {
			if err := os.WriteFile(expOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote exploration to %s\n", expOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVarP(&expTarget, "target", "t", "", "binary response column (enables event-rate reporting)")
	exploreCmd.Flags().StringVar(&expDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	exploreCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	exploreCmd.Flags().BoolVar(&expCorr, "correlations", true, "compute Pearson correlations among numeric columns")
	exploreCmd.Flags().BoolVar(&expOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	exploreCmd.Flags().Float64Var(&expOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	exploreCmd.Flags().IntVar(&expTopValues, "top-values", 8, "categorical levels to report per column")
}
