package explore_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
	"github.com/KaramelBytes/scoreloom/internal/explore"
)

func fixtureFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	recs := [][]string{
		{"balance", "tenure", "segment", "churn"},
		{"120.5", "3", "retail", "0"},
		{"80.0", "1", "retail", "1"},
		{"200.0", "7", "corporate", "0"},
		{"NA", "2", "retail", "1"},
		{"150.0", "5", "corporate", "0"},
		{"90.0", "1", "retail", "0"},
		{"110.0", "4", "corporate", "0"},
		{"70.0", "1", "retail", "1"},
	}
	f, err := dataset.FromRecords(recs, "churn.csv", dataset.Options{Target: "churn"})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return f
}

func TestDescribe_Summaries(t *testing.T) {
	f := fixtureFrame(t)
	rep, err := explore.Describe(f, explore.DefaultOptions())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if rep.Rows != 8 {
		t.Fatalf("expected 8 rows, got %d", rep.Rows)
	}
	if rep.Events != 3 {
		t.Fatalf("expected 3 events, got %d", rep.Events)
	}
	if math.Abs(rep.EventRate-0.375) > 1e-12 {
		t.Fatalf("expected event rate 0.375, got %g", rep.EventRate)
	}

	byName := map[string]explore.ColumnSummary{}
	for _, c := range rep.Cols {
		byName[c.Name] = c
	}
	bal, ok := byName["balance"]
	if !ok || bal.Kind != "numeric" {
		t.Fatalf("expected numeric summary for balance, got %+v", bal)
	}
	if bal.Missing != 1 || bal.NonNull != 7 {
		t.Fatalf("expected 1 missing / 7 non-null for balance, got %d/%d", bal.Missing, bal.NonNull)
	}
	if bal.Min != 70 || bal.Max != 200 {
		t.Fatalf("unexpected balance range [%g, %g]", bal.Min, bal.Max)
	}
	seg, ok := byName["segment"]
	if !ok || seg.Kind != "categorical" {
		t.Fatalf("expected categorical summary for segment, got %+v", seg)
	}
	if seg.Unique != 2 {
		t.Fatalf("expected 2 segment levels, got %d", seg.Unique)
	}
	if seg.TopValues[0].Value != "retail" || seg.TopValues[0].Count != 5 {
		t.Fatalf("expected retail x5 on top, got %+v", seg.TopValues[0])
	}
}

func TestDescribe_Correlations(t *testing.T) {
	// tenure2 is an exact linear function of tenure, so r must be 1.
	recs := [][]string{{"tenure", "tenure2", "flag"}}
	for i := 1; i <= 10; i++ {
		recs = append(recs, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", 2*i+3),
			fmt.Sprintf("%d", i%2),
		})
	}
	f, err := dataset.FromRecords(recs, "lin.csv", dataset.Options{Target: "flag"})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	rep, err := explore.Describe(f, explore.DefaultOptions())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if rep.Corr == nil {
		t.Fatalf("expected correlation matrix")
	}
	idx := map[string]int{}
	for i, n := range rep.Corr.Columns {
		idx[n] = i
	}
	r := rep.Corr.Values[idx["tenure"]][idx["tenure2"]]
	if math.Abs(r-1) > 1e-9 {
		t.Fatalf("expected correlation 1 between tenure and tenure2, got %g", r)
	}
	if rep.Corr.Values[idx["tenure"]][idx["tenure"]] != 1 {
		t.Fatalf("diagonal must be 1")
	}
}

func TestDescribe_OutlierDetection(t *testing.T) {
	recs := [][]string{{"amount", "flag"}}
	for i := 0; i < 20; i++ {
		recs = append(recs, []string{fmt.Sprintf("%d", 100+i), fmt.Sprintf("%d", i%2)})
	}
	recs = append(recs, []string{"100000", "0"})
	f, err := dataset.FromRecords(recs, "outlier.csv", dataset.Options{Target: "flag"})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	rep, err := explore.Describe(f, explore.DefaultOptions())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	var amount explore.ColumnSummary
	for _, c := range rep.Cols {
		if c.Name == "amount" {
			amount = c
		}
	}
	if amount.OutliersCount < 1 {
		t.Fatalf("expected at least one MAD outlier, got %d", amount.OutliersCount)
	}
	if amount.OutliersMaxAbsZ <= amount.OutlierThreshold {
		t.Fatalf("expected max |z| above threshold %g, got %g", amount.OutlierThreshold, amount.OutliersMaxAbsZ)
	}
}

func TestReportMarkdownSections(t *testing.T) {
	f := fixtureFrame(t)
	rep, err := explore.Describe(f, explore.DefaultOptions())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	out := rep.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[CORRELATIONS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s section in:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "churn") {
		t.Fatalf("expected target name in report")
	}
}
