package cmd

import (
	"fmt"

	"github.com/KaramelBytes/scoreloom/internal/assess"
	"github.com/KaramelBytes/scoreloom/internal/dataset"
	"github.com/KaramelBytes/scoreloom/internal/model"
	"github.com/KaramelBytes/scoreloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scoTarget    string
	scoDelimiter string
	scoModelPath string
	scoCutoff    float64
	scoOutput    string
	scoMetrics   string
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Score a dataset with a fitted model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFrame(args[0], scoTarget, scoDelimiter)
		if err != nil {
			return err
		}
		m, err := model.LoadModel(scoModelPath)
		if err != nil {
			return err
		}
		scores, kept, dropped, err := m.ScoreFrame(f)
		if err != nil {
			return err
		}
		if dropped > 0 {
			fmt.Printf("⚠ Warning: %d rows dropped for missing feature values\n", dropped)
		}

		scored, err := f.Subset(kept)
		if err != nil {
			return err
		}
		scored, err = scored.WithColumn("score", scores)
		if err != nil {
			return err
		}
		classes := model.Classify(scores, scoCutoff)
		scored, err = scored.WithColumn("class", classes)
		if err != nil {
			return err
		}
		out := scoOutput
		if out == "" {
			out = "scored.csv"
		}
		if err := scored.WriteCSV(out); err != nil {
			return err
		}
		fmt.Printf("✓ Scored %d rows, wrote %s\n", len(scores), out)

		// With a known target we can also assess the scores.
		if f.Target() != "" {
			metrics, err := evaluateScored(scored, scores, scoCutoff)
			if err != nil {
				return err
			}
			fmt.Printf("  AUC %.4f, Gini %.4f, KS %.4f, accuracy %.4f, F1 %.4f\n",
				metrics.AUC, metrics.Gini, metrics.KS, metrics.Accuracy, metrics.F1)
			if scoMetrics != "" {
				b, err := utils.PrettyJSON(metrics)
				if err != nil {
					return err
				}
				if err := utils.SafeWriteFile(scoMetrics, b); err != nil {
					return err
				}
				fmt.Printf("✓ Wrote metrics to %s\n", scoMetrics)
			}
		}
		return nil
	},
}

func evaluateScored(scored *dataset.Frame, scores []float64, cutoff float64) (*assess.Metrics, error) {
	labels, err := scored.Labels()
	if err != nil {
		return nil, err
	}
	opt := assess.DefaultOptions()
	opt.Cutoff = cutoff
	if cfg != nil && cfg.LiftBins > 0 {
		opt.LiftBins = cfg.LiftBins
	}
	if opt.LiftBins > len(scores) {
		opt.LiftBins = len(scores)
	}
	return assess.Evaluate(scores, labels, opt)
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scoTarget, "target", "t", "", "binary response column (enables assessment)")
	scoreCmd.Flags().StringVar(&scoDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	scoreCmd.Flags().StringVarP(&scoModelPath, "model", "m", "model.json", "fitted model to apply")
	scoreCmd.Flags().Float64Var(&scoCutoff, "cutoff", 0.5, "classification cutoff")
	scoreCmd.Flags().StringVarP(&scoOutput, "output", "o", "", "output CSV path (default scored.csv)")
	scoreCmd.Flags().StringVar(&scoMetrics, "metrics", "", "optional path to write assessment metrics (JSON)")
}
