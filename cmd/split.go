package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/scoreloom/internal/sampling"
	"github.com/KaramelBytes/scoreloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	splTarget    string
	splDelimiter string
	splTrain     float64
	splTest      float64
	splValidate  float64
	splOutDir    string
)

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Partition a dataset into stratified train/test/validate sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFrame(args[0], splTarget, splDelimiter)
		if err != nil {
			return err
		}
		if f.Target() == "" {
			return fmt.Errorf("--target is required")
		}
		fracs := sampling.PartitionFractions{Train: splTrain, Test: splTest, Validate: splValidate}
		if !cmd.Flags().Changed("train") && cfg != nil {
			fracs = sampling.PartitionFractions{
				Train:    cfg.TrainFraction,
				Test:     cfg.TestFraction,
				Validate: cfg.ValidateFraction,
			}
		}
		split, err := sampling.Partition(f, fracs, effectiveSeed())
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(splOutDir); err != nil {
			return err
		}
		for _, part := range []struct {
			name  string
			frame interface{ WriteCSV(string) error }
			rows  int
		}{
			{"train.csv", split.Train, split.Train.Rows()},
			{"test.csv", split.Test, split.Test.Rows()},
			{"validate.csv", split.Validate, split.Validate.Rows()},
		} {
			path := filepath.Join(splOutDir, part.name)
			if err := part.frame.WriteCSV(path); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s (%d rows)\n", path, part.rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVarP(&splTarget, "target", "t", "", "binary response column")
	splitCmd.Flags().StringVar(&splDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	splitCmd.Flags().Float64Var(&splTrain, "train", 0.6, "train fraction")
	splitCmd.Flags().Float64Var(&splTest, "test", 0.2, "test fraction")
	splitCmd.Flags().Float64Var(&splValidate, "validate", 0.2, "validate fraction")
	splitCmd.Flags().StringVarP(&splOutDir, "out-dir", "o", ".", "directory for the partition CSVs")
}
