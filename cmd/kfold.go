package cmd

import (
	"fmt"

	"github.com/KaramelBytes/scoreloom/internal/crossval"
	"github.com/KaramelBytes/scoreloom/internal/model"
	"github.com/KaramelBytes/scoreloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	kfTarget    string
	kfDelimiter string
	kfModelPath string
	kfFolds     int
	kfCutoff    float64
	kfScoredOut string
	kfResultOut string
)

var kfoldCmd = &cobra.Command{
	Use:   "kfold <file>",
	Short: "Cross-validate a fitted model on a held-out dataset",
	Long: `kfold partitions the held-out dataset into k stratified folds, scores each
fold with the fitted model, unions the scored folds, and reports per-fold
goodness-of-fit statistics with mean/stddev/min/max aggregates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFrame(args[0], kfTarget, kfDelimiter)
		if err != nil {
			return err
		}
		if f.Target() == "" {
			return fmt.Errorf("--target is required")
		}
		m, err := model.LoadModel(kfModelPath)
		if err != nil {
			return err
		}
		opt := crossval.Options{
			Folds:  kfFolds,
			Seed:   effectiveSeed(),
			Cutoff: kfCutoff,
		}
		if !cmd.Flags().Changed("folds") && cfg != nil && cfg.Folds > 0 {
			opt.Folds = cfg.Folds
		}
		if cfg != nil && cfg.LiftBins > 0 {
			opt.LiftBins = cfg.LiftBins
		}
		res, err := crossval.Run(m, f, opt)
		if err != nil {
			return err
		}
		for _, fm := range res.Folds {
			fmt.Printf("  fold %d (n=%d, events=%d): AUC %.4f, KS %.4f, lift %.3f, F1 %.4f, accuracy %.4f\n",
				fm.Fold, fm.Records, fm.Events, fm.Metrics.AUC, fm.Metrics.KS, fm.Metrics.Lift, fm.Metrics.F1, fm.Metrics.Accuracy)
		}
		s := res.Summary
		fmt.Printf("✓ %d-fold cross-validation: mean AUC %.4f (±%.4f), mean KS %.4f (±%.4f), mean misclassification %.4f\n",
			opt.Folds, s.AUC.Mean, s.AUC.StdDev, s.KS.Mean, s.KS.StdDev, s.Misclassification.Mean)

		if kfScoredOut != "" {
			if err := res.Scored.WriteCSV(kfScoredOut); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote unioned scored folds to %s (%d rows)\n", kfScoredOut, res.Scored.Rows())
		}
		if kfResultOut != "" {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(kfResultOut, b); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote cross-validation result to %s\n", kfResultOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kfoldCmd)
	kfoldCmd.Flags().StringVarP(&kfTarget, "target", "t", "", "binary response column")
	kfoldCmd.Flags().StringVar(&kfDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	kfoldCmd.Flags().StringVarP(&kfModelPath, "model", "m", "model.json", "fitted model to cross-validate")
	kfoldCmd.Flags().IntVar(&kfFolds, "folds", 5, "number of stratified folds")
	kfoldCmd.Flags().Float64Var(&kfCutoff, "cutoff", 0.5, "classification cutoff")
	kfoldCmd.Flags().StringVar(&kfScoredOut, "scored", "", "optional path for the unioned scored folds (CSV)")
	kfoldCmd.Flags().StringVarP(&kfResultOut, "output", "o", "", "optional path for the full result (JSON)")
}
