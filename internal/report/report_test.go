package report_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/scoreloom/internal/assess"
	"github.com/KaramelBytes/scoreloom/internal/crossval"
	"github.com/KaramelBytes/scoreloom/internal/model"
	"github.com/KaramelBytes/scoreloom/internal/report"
)

func fixtureArtifacts(t *testing.T) *report.Artifacts {
	t.Helper()
	scores := []float64{0, 3, 5, 6, 7.5, 8}
	labels := []float64{0, 1, 0, 1, 1, 1}
	metrics, err := assess.Evaluate(scores, labels, assess.Options{Cutoff: 0.5, LiftBins: 3})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	roc, err := assess.ROC(scores, labels)
	if err != nil {
		t.Fatalf("roc: %v", err)
	}
	lift, err := assess.Lift(scores, labels, 3)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	return &report.Artifacts{
		Title:       "quarterly churn model",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Balance:     &report.BalanceInfo{RowsBefore: 100, RowsAfter: 160, RateBefore: 0.1, RateAfter: 0.5},
		Partition:   &report.PartitionInfo{Train: 96, Test: 32, Validate: 32, Seed: 7},
		Model: &model.Logit{
			Features: []string{"balance"}, Intercept: -2.1, Coef: []float64{0.04},
			LogLik: -42.5, NullLogLik: -60.1, AIC: 89.0, N: 96, Iterations: 6, Converged: true,
		},
		Steps: []model.StepSummary{
			{Step: 1, Action: "entered", Variable: "balance", ChiSq: 35.2, PValue: 0.0001, LogLik: -42.5},
		},
		Test: &report.TestAssessment{Metrics: metrics, ROC: roc, Lift: lift},
		CV: &crossval.Result{
			Folds: []crossval.FoldMetrics{
				{Fold: 1, Records: 16, Events: 8, Metrics: *metrics},
				{Fold: 2, Records: 16, Events: 8, Metrics: *metrics},
			},
			Summary: crossval.Summary{
				AUC: crossval.Stat{Mean: metrics.AUC, Min: metrics.AUC, Max: metrics.AUC},
				KS:  crossval.Stat{Mean: metrics.KS, Min: metrics.KS, Max: metrics.KS},
			},
		},
	}
}

func TestArtifactsJSONRoundTrip(t *testing.T) {
	arts := fixtureArtifacts(t)
	buf, err := json.Marshal(arts)
	if err != nil {
		t.Fatalf("marshal artifacts: %v", err)
	}
	var back report.Artifacts
	if err := json.Unmarshal(buf, &back); err != nil {
		t.Fatalf("unmarshal artifacts: %v", err)
	}
	if back.Test == nil || back.Test.ROC == nil {
		t.Fatalf("roc curve lost in round trip")
	}
	if back.Test.ROC.AUC != arts.Test.ROC.AUC {
		t.Fatalf("expected AUC %g after round trip, got %g", arts.Test.ROC.AUC, back.Test.ROC.AUC)
	}
	if len(back.Test.ROC.Thresholds) != len(arts.Test.ROC.Thresholds) {
		t.Fatalf("thresholds lost in round trip")
	}
}

func TestRenderMarkdownSections(t *testing.T) {
	out := report.RenderMarkdown(fixtureArtifacts(t))
	for _, want := range []string{
		"[RUN] quarterly churn model",
		"[CLASS BALANCE]",
		"[PARTITION]",
		"[MODEL]",
		"[STEPWISE SELECTION]",
		"[TEST ASSESSMENT]",
		"[CROSS-VALIDATION]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in markdown:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "balance") {
		t.Fatalf("expected model coefficient name in markdown")
	}
}

func TestRenderMarkdownOmitsNilSections(t *testing.T) {
	out := report.RenderMarkdown(&report.Artifacts{Title: "bare"})
	for _, absent := range []string{"[CLASS BALANCE]", "[MODEL]", "[CROSS-VALIDATION]"} {
		if strings.Contains(out, absent) {
			t.Fatalf("unexpected %s section for nil artifact", absent)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := report.RenderHTML(fixtureArtifacts(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(html)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"quarterly churn model",
		"Cross-validation",
		"data:image/png;base64,",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in html output", want)
		}
	}
}

func TestRenderHTMLWithoutCharts(t *testing.T) {
	a := fixtureArtifacts(t)
	a.Test = nil
	html, err := report.RenderHTML(a)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(html), "data:image/png;base64,") {
		t.Fatalf("expected no embedded charts without a test assessment")
	}
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestCharts(t *testing.T) {
	a := fixtureArtifacts(t)
	png, err := report.ROCChart(a.Test.ROC)
	if err != nil {
		t.Fatalf("roc chart: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("roc chart is not a png")
	}
	png, err = report.LiftChart(a.Test.Lift)
	if err != nil {
		t.Fatalf("lift chart: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("lift chart is not a png")
	}
	png, err = report.KSChart(a.Test.ROC)
	if err != nil {
		t.Fatalf("ks chart: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("ks chart is not a png")
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.xlsx")
	if err := report.WriteXLSX(path, fixtureArtifacts(t)); err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	want := map[string]bool{}
	for _, s := range sheets {
		want[s] = true
	}
	for _, s := range []string{"Metrics", "Folds", "Coefficients", "Lift"} {
		if !want[s] {
			t.Fatalf("workbook missing sheet %q, have %v", s, sheets)
		}
	}
	rows, err := wb.GetRows("Metrics")
	if err != nil {
		t.Fatalf("read metrics sheet: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("metrics sheet is empty")
	}
}
