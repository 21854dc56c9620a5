package cmd

import (
	"fmt"

	"github.com/KaramelBytes/scoreloom/internal/model"
	"github.com/spf13/cobra"
)

var (
	trnTarget    string
	trnDelimiter string
	trnFeatures  []string
	trnSLEntry   float64
	trnSLStay    float64
	trnMaxIter   int
	trnModelPath string
)

var trainCmd = &cobra.Command{
	Use:   "train <file>",
	Short: "Fit a stepwise logistic regression on a training dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadFrame(args[0], trnTarget, trnDelimiter)
		if err != nil {
			return err
		}
		if f.Target() == "" {
			return fmt.Errorf("--target is required")
		}
		candidates, err := featureList(f, trnFeatures)
		if err != nil {
			return err
		}
		opt := modelOptions()
		if cmd.Flags().Changed("slentry") {
			opt.SLEntry = trnSLEntry
		}
		if cmd.Flags().Changed("slstay") {
			opt.SLStay = trnSLStay
		}
		if cmd.Flags().Changed("max-iter") {
			opt.MaxIter = trnMaxIter
		}

		m, steps, err := model.Stepwise(f, candidates, opt)
		if err != nil {
			return err
		}
		for _, s := range steps {
			fmt.Printf("  step %d: %s %s (chi-square %.4g, p=%.4g)\n", s.Step, s.Action, s.Variable, s.ChiSq, s.PValue)
		}
		if len(m.Features) == 0 {
			fmt.Println("⚠ Warning: no variable met the entry criterion; model is intercept-only")
		}
		if !m.Converged {
			fmt.Println("⚠ Warning: fit did not converge within the iteration limit")
		}
		if err := m.Save(trnModelPath); err != nil {
			return err
		}
		fmt.Printf("✓ Fitted model on %d rows (%d of %d candidates selected, AIC %.4g), wrote %s\n",
			m.N, len(m.Features), len(candidates), m.AIC, trnModelPath)
		return nil
	},
}

// modelOptions builds model options from config defaults.
func modelOptions() model.Options {
	opt := model.DefaultOptions()
	if cfg != nil {
		if cfg.SLEntry > 0 {
			opt.SLEntry = cfg.SLEntry
		}
		if cfg.SLStay > 0 {
			opt.SLStay = cfg.SLStay
		}
		if cfg.MaxIter > 0 {
			opt.MaxIter = cfg.MaxIter
		}
		if cfg.Tol > 0 {
			opt.Tol = cfg.Tol
		}
		if cfg.Cutoff > 0 && cfg.Cutoff < 1 {
			opt.Cutoff = cfg.Cutoff
		}
	}
	return opt
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVarP(&trnTarget, "target", "t", "", "binary response column")
	trainCmd.Flags().StringVar(&trnDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	trainCmd.Flags().StringSliceVar(&trnFeatures, "features", nil, "candidate columns (default: all numeric non-target columns)")
	trainCmd.Flags().Float64Var(&trnSLEntry, "slentry", 0.05, "significance level to enter the model")
	trainCmd.Flags().Float64Var(&trnSLStay, "slstay", 0.05, "significance level to stay in the model")
	trainCmd.Flags().IntVar(&trnMaxIter, "max-iter", 50, "maximum IRLS iterations per fit")
	trainCmd.Flags().StringVarP(&trnModelPath, "model", "m", "model.json", "output path for the fitted model")
}
