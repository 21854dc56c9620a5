package run_test

import (
	"os"
	"path/filepath"
	"testing"

	runpkg "github.com/KaramelBytes/scoreloom/internal/run"
)

func TestRunSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "churn-q2")
	r := runpkg.NewRun("churn-q2", "/data/churn.csv", "churn", dir)
	if r.ID == "" {
		t.Fatalf("expected generated run id")
	}
	r.RecordStep("explore", "500 rows")
	r.RecordStep("train", "2 variables selected")
	if err := r.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := runpkg.LoadRun(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != r.ID || got.Name != "churn-q2" || got.Target != "churn" {
		t.Fatalf("round trip changed identity: %+v", got)
	}
	if len(got.Steps) != 2 || got.Steps[1].Name != "train" {
		t.Fatalf("round trip lost steps: %+v", got.Steps)
	}
	if got.RootDir() != dir {
		t.Fatalf("expected root dir %s, got %s", dir, got.RootDir())
	}
}

func TestLoadRunMissing(t *testing.T) {
	if _, err := runpkg.LoadRun(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing run.json")
	}
}

func TestArtifactPathsAreRelative(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	r := runpkg.NewRun("r", "d.csv", "y", dir)
	inner := filepath.Join(dir, "model.json")
	r.AddArtifact("model", inner)
	if err := r.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if r.Artifacts["model"] != "model.json" {
		t.Fatalf("expected relative artifact path, got %q", r.Artifacts["model"])
	}
	if got := r.ArtifactPath("model"); got != inner {
		t.Fatalf("expected resolved path %s, got %s", inner, got)
	}
	if got := r.ArtifactPath("missing"); got != "" {
		t.Fatalf("expected empty path for unknown kind, got %q", got)
	}

	// Paths outside the run directory stay absolute.
	outside := filepath.Join(t.TempDir(), "elsewhere.csv")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r.AddArtifact("scored", outside)
	if got := r.ArtifactPath("scored"); got != outside {
		t.Fatalf("expected absolute path preserved, got %q", got)
	}
}
