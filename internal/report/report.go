// Package report renders the results of a modeling run as a formatted,
// self-contained HTML page, a terminal-friendly Markdown summary, and an
// XLSX metrics workbook.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/scoreloom/internal/assess"
	"github.com/KaramelBytes/scoreloom/internal/crossval"
	"github.com/KaramelBytes/scoreloom/internal/explore"
	"github.com/KaramelBytes/scoreloom/internal/model"
)

// Artifacts aggregates everything a run produced for rendering. Sections
// whose pointer is nil are omitted from the output.
type Artifacts struct {
	Title       string
	GeneratedAt time.Time

	Dataset   *explore.Report
	Balance   *BalanceInfo
	Partition *PartitionInfo

	Model *model.Logit
	Steps []model.StepSummary

	Test *TestAssessment
	CV   *crossval.Result
}

// BalanceInfo describes the oversampling step.
type BalanceInfo struct {
	RowsBefore int
	RowsAfter  int
	RateBefore float64
	RateAfter  float64
}

// PartitionInfo describes the train/test/validate split.
type PartitionInfo struct {
	Train    int
	Test     int
	Validate int
	Seed     int64
}

// TestAssessment holds the scored test-set evaluation.
type TestAssessment struct {
	Metrics *assess.Metrics
	ROC     *assess.ROCCurve
	Lift    []assess.LiftBin
}

// RenderMarkdown writes a compact bracketed-section summary.
func RenderMarkdown(a *Artifacts) string {
	var b strings.Builder
	title := a.Title
	if title == "" {
		title = "model assessment"
	}
	b.WriteString(fmt.Sprintf("[RUN] %s\n", title))
	if !a.GeneratedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Generated: %s\n", a.GeneratedAt.Format(time.RFC3339)))
	}
	b.WriteString("\n")

	if a.Dataset != nil {
		b.WriteString(a.Dataset.Markdown())
		b.WriteString("\n")
	}
	if a.Balance != nil {
		b.WriteString("[CLASS BALANCE]\n")
		b.WriteString(fmt.Sprintf("- rows %d -> %d, event rate %.2f%% -> %.2f%%\n\n",
			a.Balance.RowsBefore, a.Balance.RowsAfter, a.Balance.RateBefore*100, a.Balance.RateAfter*100))
	}
	if a.Partition != nil {
		b.WriteString("[PARTITION]\n")
		b.WriteString(fmt.Sprintf("- train %d, test %d, validate %d (seed %d)\n\n",
			a.Partition.Train, a.Partition.Test, a.Partition.Validate, a.Partition.Seed))
	}
	if a.Model != nil {
		b.WriteString("[MODEL]\n")
		b.WriteString(fmt.Sprintf("- intercept %.6g, AIC %.4g, log-likelihood %.6g, converged=%v (%d iterations)\n",
			a.Model.Intercept, a.Model.AIC, a.Model.LogLik, a.Model.Converged, a.Model.Iterations))
		for i, name := range a.Model.Features {
			b.WriteString(fmt.Sprintf("- %s: %.6g\n", name, a.Model.Coef[i]))
		}
		b.WriteString("\n")
	}
	if len(a.Steps) > 0 {
		b.WriteString("[STEPWISE SELECTION]\n")
		for _, s := range a.Steps {
			b.WriteString(fmt.Sprintf("- step %d: %s %s (chi-square %.4g, p=%.4g)\n",
				s.Step, s.Action, s.Variable, s.ChiSq, s.PValue))
		}
		b.WriteString("\n")
	}
	if a.Test != nil && a.Test.Metrics != nil {
		b.WriteString("[TEST ASSESSMENT]\n")
		writeMetrics(&b, a.Test.Metrics)
		b.WriteString("\n")
	}
	if a.CV != nil {
		b.WriteString("[CROSS-VALIDATION]\n")
		for _, f := range a.CV.Folds {
			b.WriteString(fmt.Sprintf("- fold %d (n=%d, events=%d): AUC %.4f, KS %.4f, lift %.3f, F1 %.4f, accuracy %.4f\n",
				f.Fold, f.Records, f.Events, f.Metrics.AUC, f.Metrics.KS, f.Metrics.Lift, f.Metrics.F1, f.Metrics.Accuracy))
		}
		s := a.CV.Summary
		b.WriteString(fmt.Sprintf("- mean AUC %.4f (±%.4f), mean KS %.4f (±%.4f), mean misclassification %.4f\n",
			s.AUC.Mean, s.AUC.StdDev, s.KS.Mean, s.KS.StdDev, s.Misclassification.Mean))
		b.WriteString("\n")
	}
	return b.String()
}

func writeMetrics(b *strings.Builder, m *assess.Metrics) {
	b.WriteString(fmt.Sprintf("- n=%d, events=%d\n", m.N, m.Events))
	b.WriteString(fmt.Sprintf("- AUC %.4f, Gini %.4f, KS %.4f\n", m.AUC, m.Gini, m.KS))
	b.WriteString(fmt.Sprintf("- lift %.3f at top %.0f%%\n", m.Lift, m.LiftDepth*100))
	b.WriteString(fmt.Sprintf("- accuracy %.4f, misclassification %.4f (cutoff %.2f)\n", m.Accuracy, m.Misclassification, m.Cutoff))
	b.WriteString(fmt.Sprintf("- precision %.4f, recall %.4f, F1 %.4f\n", m.Precision, m.Recall, m.F1))
}
