package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/scoreloom/internal/assess"
	"github.com/KaramelBytes/scoreloom/internal/crossval"
	"github.com/KaramelBytes/scoreloom/internal/explore"
	"github.com/KaramelBytes/scoreloom/internal/model"
	"github.com/KaramelBytes/scoreloom/internal/report"
	runpkg "github.com/KaramelBytes/scoreloom/internal/run"
	"github.com/KaramelBytes/scoreloom/internal/sampling"
	"github.com/KaramelBytes/scoreloom/internal/utils"
	"github.com/spf13/cobra"
)

var (
	runName      string
	runTarget    string
	runDelimiter string
	runFeatures  []string
	runEventRate float64
	runFolds     int
	runCutoff    float64
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute the full workflow: explore, balance, split, train, score, cross-validate, report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := loadFrame(path, runTarget, runDelimiter)
		if err != nil {
			return err
		}
		if f.Target() == "" {
			return fmt.Errorf("--target is required")
		}

		name := runName
		if name == "" {
			base := filepath.Base(path)
			name = strings.TrimSuffix(base, filepath.Ext(base)) + "-" + time.Now().Format("20060102-150405")
		}
		rootDir, err := runsDir()
		if err != nil {
			return err
		}
		runDir := filepath.Join(rootDir, name)
		if _, err := os.Stat(filepath.Join(runDir, "run.json")); err == nil {
			return fmt.Errorf("run already exists at %s", runDir)
		}
		r := runpkg.NewRun(name, path, f.Target(), runDir)
		if err := r.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Run initialized: %s (id %s)\n", runDir, r.ID)
		seed := effectiveSeed()
		arts := &report.Artifacts{Title: "Model assessment: " + name, GeneratedAt: time.Now()}

		// 1. Explore
		expRep, err := explore.Describe(f, explore.DefaultOptions())
		if err != nil {
			return fmt.Errorf("explore: %w", err)
		}
		arts.Dataset = expRep
		explorePath := filepath.Join(runDir, "explore.md")
		if err := utils.SafeWriteFile(explorePath, []byte(expRep.Markdown())); err != nil {
			return err
		}
		r.AddArtifact("explore", explorePath)
		r.RecordStep("explore", fmt.Sprintf("%d rows, %d columns, event rate %.2f%%", expRep.Rows, len(expRep.Cols), expRep.EventRate*100))
		fmt.Printf("✓ Explored %d rows (event rate %.2f%%)\n", expRep.Rows, expRep.EventRate*100)

		// 2. Balance
		rate := runEventRate
		if !cmd.Flags().Changed("event-rate") && cfg != nil && cfg.EventRate > 0 {
			rate = cfg.EventRate
		}
		before, beforeRate := f.Rows(), expRep.EventRate
		balanced, err := sampling.Oversample(f, rate, seed)
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		afterLabels, err := balanced.Labels()
		if err != nil {
			return err
		}
		events := 0
		for _, v := range afterLabels {
			if v == 1 {
				events++
			}
		}
		afterRate := float64(events) / float64(balanced.Rows())
		arts.Balance = &report.BalanceInfo{
			RowsBefore: before, RowsAfter: balanced.Rows(),
			RateBefore: beforeRate, RateAfter: afterRate,
		}
		r.RecordStep("balance", fmt.Sprintf("rows %d -> %d, event rate %.2f%% -> %.2f%%", before, balanced.Rows(), beforeRate*100, afterRate*100))
		fmt.Printf("✓ Balanced classes: %d -> %d rows (event rate %.2f%%)\n", before, balanced.Rows(), afterRate*100)

		// 3. Partition
		fracs := sampling.DefaultFractions()
		if cfg != nil && cfg.TrainFraction > 0 {
			fracs = sampling.PartitionFractions{Train: cfg.TrainFraction, Test: cfg.TestFraction, Validate: cfg.ValidateFraction}
		}
		split, err := sampling.Partition(balanced, fracs, seed)
		if err != nil {
			return fmt.Errorf("partition: %w", err)
		}
		arts.Partition = &report.PartitionInfo{
			Train: split.Train.Rows(), Test: split.Test.Rows(), Validate: split.Validate.Rows(), Seed: seed,
		}
		r.RecordStep("partition", fmt.Sprintf("train %d, test %d, validate %d", split.Train.Rows(), split.Test.Rows(), split.Validate.Rows()))
		fmt.Printf("✓ Partitioned: train %d, test %d, validate %d\n", split.Train.Rows(), split.Test.Rows(), split.Validate.Rows())

		// 4. Train (stepwise)
		candidates, err := featureList(split.Train, runFeatures)
		if err != nil {
			return err
		}
		opt := modelOptions()
		if cmd.Flags().Changed("cutoff") {
			opt.Cutoff = runCutoff
		}
		m, steps, err := model.Stepwise(split.Train, candidates, opt)
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}
		if len(m.Features) == 0 {
			fmt.Println("⚠ Warning: no variable met the entry criterion; model is intercept-only")
		}
		if !m.Converged {
			fmt.Println("⚠ Warning: fit did not converge within the iteration limit")
		}
		arts.Model = m
		arts.Steps = steps
		modelPath := filepath.Join(runDir, "model.json")
		if err := m.Save(modelPath); err != nil {
			return err
		}
		r.AddArtifact("model", modelPath)
		r.RecordStep("train", fmt.Sprintf("%d of %d candidates selected, AIC %.4g", len(m.Features), len(candidates), m.AIC))
		fmt.Printf("✓ Trained: %d of %d candidates selected (AIC %.4g)\n", len(m.Features), len(candidates), m.AIC)

		// 5. Score and assess the test partition
		testAssessment, err := assessPartition(m, split, opt.Cutoff)
		if err != nil {
			return fmt.Errorf("score test: %w", err)
		}
		arts.Test = testAssessment
		r.RecordStep("score", fmt.Sprintf("test AUC %.4f, KS %.4f", testAssessment.Metrics.AUC, testAssessment.Metrics.KS))
		fmt.Printf("✓ Scored test set: AUC %.4f, Gini %.4f, KS %.4f\n",
			testAssessment.Metrics.AUC, testAssessment.Metrics.Gini, testAssessment.Metrics.KS)

		// 6. Cross-validate against the held-out validate partition
		cvOpt := crossval.Options{Folds: runFolds, Seed: seed, Cutoff: opt.Cutoff}
		if !cmd.Flags().Changed("folds") && cfg != nil && cfg.Folds > 0 {
			cvOpt.Folds = cfg.Folds
		}
		if cfg != nil && cfg.LiftBins > 0 {
			cvOpt.LiftBins = cfg.LiftBins
		}
		cv, err := crossval.Run(m, split.Validate, cvOpt)
		if err != nil {
			return fmt.Errorf("cross-validate: %w", err)
		}
		arts.CV = cv
		cvPath := filepath.Join(runDir, "crossval.json")
		b, err := utils.PrettyJSON(cv)
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(cvPath, b); err != nil {
			return err
		}
		r.AddArtifact("crossval", cvPath)
		scoredPath := filepath.Join(runDir, "validate_scored.csv")
		if err := cv.Scored.WriteCSV(scoredPath); err != nil {
			return err
		}
		r.AddArtifact("validate_scored", scoredPath)
		r.RecordStep("kfold", fmt.Sprintf("%d folds, mean AUC %.4f (±%.4f)", cvOpt.Folds, cv.Summary.AUC.Mean, cv.Summary.AUC.StdDev))
		fmt.Printf("✓ Cross-validated: mean AUC %.4f (±%.4f), mean KS %.4f\n",
			cv.Summary.AUC.Mean, cv.Summary.AUC.StdDev, cv.Summary.KS.Mean)

		// 7. Render report artifacts
		if err := writeReports(r, arts); err != nil {
			return err
		}
		r.RecordStep("report", "rendered html, markdown, xlsx")
		if err := r.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Run complete: %s\n", filepath.Join(runDir, "report.html"))
		return nil
	},
}

// assessPartition scores the test partition and bundles metrics, ROC curve,
// and lift table for reporting.
func assessPartition(m *model.Logit, split *sampling.Split, cutoff float64) (*report.TestAssessment, error) {
	scores, kept, dropped, err := m.ScoreFrame(split.Test)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		fmt.Printf("⚠ Warning: %d test rows dropped for missing feature values\n", dropped)
	}
	labels, err := split.Test.Labels()
	if err != nil {
		return nil, err
	}
	keptLabels := make([]float64, len(kept))
	for i, row := range kept {
		keptLabels[i] = labels[row]
	}
	opt := assess.DefaultOptions()
	opt.Cutoff = cutoff
	if cfg != nil && cfg.LiftBins > 0 {
		opt.LiftBins = cfg.LiftBins
	}
	if opt.LiftBins > len(scores) {
		opt.LiftBins = len(scores)
	}
	metrics, err := assess.Evaluate(scores, keptLabels, opt)
	if err != nil {
		return nil, err
	}
	roc, err := assess.ROC(scores, keptLabels)
	if err != nil {
		return nil, err
	}
	lift, err := assess.Lift(scores, keptLabels, opt.LiftBins)
	if err != nil {
		return nil, err
	}
	return &report.TestAssessment{Metrics: metrics, ROC: roc, Lift: lift}, nil
}

// writeReports renders and registers the html/markdown/xlsx renditions plus
// the raw artifact bundle used by the report command.
func writeReports(r *runpkg.Run, arts *report.Artifacts) error {
	runDir := r.RootDir()

	bundle, err := utils.PrettyJSON(arts)
	if err != nil {
		return err
	}
	bundlePath := filepath.Join(runDir, "artifacts.json")
	if err := utils.SafeWriteFile(bundlePath, bundle); err != nil {
		return err
	}
	r.AddArtifact("artifacts", bundlePath)

	html, err := report.RenderHTML(arts)
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(runDir, "report.html")
	if err := utils.SafeWriteFile(htmlPath, html); err != nil {
		return err
	}
	r.AddArtifact("report_html", htmlPath)

	mdPath := filepath.Join(runDir, "report.md")
	if err := utils.SafeWriteFile(mdPath, []byte(report.RenderMarkdown(arts))); err != nil {
		return err
	}
	r.AddArtifact("report_md", mdPath)

	xlsxPath := filepath.Join(runDir, "metrics.xlsx")
	if err := report.WriteXLSX(xlsxPath, arts); err != nil {
		return err
	}
	r.AddArtifact("metrics_xlsx", xlsxPath)
	return nil
}

func runsDir() (string, error) {
	if cfg != nil && cfg.RunsDir != "" {
		dir := cfg.RunsDir
		if strings.HasPrefix(dir, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			dir = strings.TrimPrefix(dir, "~")
			dir = strings.TrimPrefix(dir, string(os.PathSeparator))
			dir = strings.TrimPrefix(dir, "/")
			dir = filepath.Join(home, dir)
		}
		dir = filepath.Clean(dir)
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ".scoreloom", "runs")
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runName, "name", "n", "", "run name (default: dataset name + timestamp)")
	runCmd.Flags().StringVarP(&runTarget, "target", "t", "", "binary response column")
	runCmd.Flags().StringVar(&runDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab'")
	runCmd.Flags().StringSliceVar(&runFeatures, "features", nil, "candidate columns (default: all numeric non-target columns)")
	runCmd.Flags().Float64Var(&runEventRate, "event-rate", 0.5, "desired event rate after oversampling")
	runCmd.Flags().IntVar(&runFolds, "folds", 5, "number of cross-validation folds")
	runCmd.Flags().Float64Var(&runCutoff, "cutoff", 0.5, "classification cutoff")
}
