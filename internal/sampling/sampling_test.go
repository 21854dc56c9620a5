package sampling_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/KaramelBytes/scoreloom/internal/dataset"
	"github.com/KaramelBytes/scoreloom/internal/sampling"
)

// syntheticFrame builds a frame with the requested class counts.
func syntheticFrame(t *testing.T, events, nonEvents int) *dataset.Frame {
	t.Helper()
	recs := [][]string{{"amount", "flag"}}
	for i := 0; i < events; i++ {
		recs = append(recs, []string{fmt.Sprintf("%d", 100+i), "1"})
	}
	for i := 0; i < nonEvents; i++ {
		recs = append(recs, []string{fmt.Sprintf("%d", 500+i), "0"})
	}
	f, err := dataset.FromRecords(recs, "synthetic.csv", dataset.Options{Target: "flag"})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return f
}

func eventRate(t *testing.T, f *dataset.Frame) float64 {
	t.Helper()
	labels, err := f.Labels()
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	events := 0
	for _, v := range labels {
		if v == 1 {
			events++
		}
	}
	return float64(events) / float64(len(labels))
}

func TestOversampleRaisesEventRate(t *testing.T) {
	f := syntheticFrame(t, 10, 90)
	out, err := sampling.Oversample(f, 0.5, 7)
	if err != nil {
		t.Fatalf("oversample: %v", err)
	}
	if out.Rows() <= f.Rows() {
		t.Fatalf("expected rows to grow, got %d -> %d", f.Rows(), out.Rows())
	}
	got := eventRate(t, out)
	if got < 0.5 || got > 0.52 {
		t.Fatalf("expected event rate just above 0.5, got %g", got)
	}
}

func TestOversampleLowersEventRate(t *testing.T) {
	f := syntheticFrame(t, 80, 20)
	out, err := sampling.Oversample(f, 0.5, 7)
	if err != nil {
		t.Fatalf("oversample: %v", err)
	}
	got := eventRate(t, out)
	if got > 0.5 || got < 0.48 {
		t.Fatalf("expected event rate just below or at 0.5, got %g", got)
	}
}

func TestOversampleNoopWhenAtTarget(t *testing.T) {
	f := syntheticFrame(t, 50, 50)
	out, err := sampling.Oversample(f, 0.5, 7)
	if err != nil {
		t.Fatalf("oversample: %v", err)
	}
	if out.Rows() != f.Rows() {
		t.Fatalf("expected no growth at target rate, got %d -> %d", f.Rows(), out.Rows())
	}
}

func TestOversampleRejectsBadInput(t *testing.T) {
	f := syntheticFrame(t, 10, 90)
	if _, err := sampling.Oversample(f, 0, 7); err == nil {
		t.Fatalf("expected error for rate 0")
	}
	if _, err := sampling.Oversample(f, 1, 7); err == nil {
		t.Fatalf("expected error for rate 1")
	}
	single := syntheticFrame(t, 10, 0)
	if _, err := sampling.Oversample(single, 0.5, 7); err == nil {
		t.Fatalf("expected error when one class is absent")
	}
}

func TestPartitionIsStratifiedAndLossless(t *testing.T) {
	f := syntheticFrame(t, 40, 160)
	split, err := sampling.Partition(f, sampling.DefaultFractions(), 42)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	total := split.Train.Rows() + split.Test.Rows() + split.Validate.Rows()
	if total != f.Rows() {
		t.Fatalf("partitions lost rows: %d of %d", total, f.Rows())
	}
	if split.Train.Rows() != 120 || split.Test.Rows() != 40 || split.Validate.Rows() != 40 {
		t.Fatalf("unexpected partition sizes: %d/%d/%d",
			split.Train.Rows(), split.Test.Rows(), split.Validate.Rows())
	}
	base := eventRate(t, f)
	for name, part := range map[string]*dataset.Frame{
		"train": split.Train, "test": split.Test, "validate": split.Validate,
	} {
		if r := eventRate(t, part); math.Abs(r-base) > 0.05 {
			t.Fatalf("%s event rate %g drifted from base %g", name, r, base)
		}
	}
}

func TestPartitionRejectsBadFractions(t *testing.T) {
	f := syntheticFrame(t, 10, 10)
	_, err := sampling.Partition(f, sampling.PartitionFractions{Train: 0.5, Test: 0.3, Validate: 0.3}, 1)
	if err == nil {
		t.Fatalf("expected error for fractions summing to 1.1")
	}
	_, err = sampling.Partition(f, sampling.PartitionFractions{Train: 0, Test: 0.5, Validate: 0.5}, 1)
	if err == nil {
		t.Fatalf("expected error for zero train fraction")
	}
}

func TestPartitionDeterministicForSeed(t *testing.T) {
	f := syntheticFrame(t, 30, 70)
	a, err := sampling.Partition(f, sampling.DefaultFractions(), 99)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	b, err := sampling.Partition(f, sampling.DefaultFractions(), 99)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	ra, rb := a.Train.Records(), b.Train.Records()
	if len(ra) != len(rb) {
		t.Fatalf("train sizes differ: %d vs %d", len(ra), len(rb))
	}
	for i := range ra {
		for j := range ra[i] {
			if ra[i][j] != rb[i][j] {
				t.Fatalf("row %d differs between identical seeds", i)
			}
		}
	}
}

func TestFoldsAreStratifiedAndComplete(t *testing.T) {
	f := syntheticFrame(t, 25, 75)
	folds, err := sampling.Folds(f, 5, 11)
	if err != nil {
		t.Fatalf("folds: %v", err)
	}
	if len(folds) != 5 {
		t.Fatalf("expected 5 folds, got %d", len(folds))
	}
	seen := make(map[int]bool)
	for _, fd := range folds {
		if fd.Records != 20 {
			t.Fatalf("fold %d has %d records, want 20", fd.Index, fd.Records)
		}
		if fd.Events != 5 {
			t.Fatalf("fold %d has %d events, want 5", fd.Index, fd.Events)
		}
		for _, row := range fd.Rows {
			if seen[row] {
				t.Fatalf("row %d assigned to more than one fold", row)
			}
			seen[row] = true
		}
	}
	if len(seen) != f.Rows() {
		t.Fatalf("folds cover %d of %d rows", len(seen), f.Rows())
	}
}

func TestFoldsRejectTooManyFolds(t *testing.T) {
	f := syntheticFrame(t, 3, 100)
	if _, err := sampling.Folds(f, 5, 1); err == nil {
		t.Fatalf("expected error when folds exceed minority count")
	}
	if _, err := sampling.Folds(f, 1, 1); err == nil {
		t.Fatalf("expected error for k < 2")
	}
}
