package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	runpkg "github.com/KaramelBytes/scoreloom/internal/run"
)

// execCLI executes the root command with args.
func execCLI(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// writeDataset writes a CSV where the event rate rises with amount, plus a
// noise column stepwise selection should reject.
func writeDataset(t *testing.T, dir string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("amount,noise,flag\n")
	for i := 0; i < rows; i++ {
		flag := 0
		if i < rows/2 {
			if i%4 == 0 {
				flag = 1
			}
		} else if i%4 != 0 {
			flag = 1
		}
		fmt.Fprintf(&b, "%d,%d,%d\n", i+1, (i*7)%5, flag)
	}
	p := filepath.Join(dir, "accounts.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return p
}

func TestCLI_StepCommands(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	data := writeDataset(t, home, 200)
	work := filepath.Join(home, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatal(err)
	}

	balanced := filepath.Join(work, "balanced.csv")
	execCLI(t, "balance", data, "-t", "flag", "--event-rate", "0.5", "-o", balanced)
	if _, err := os.Stat(balanced); err != nil {
		t.Fatalf("balanced output missing: %v", err)
	}

	execCLI(t, "split", balanced, "-t", "flag", "--out-dir", work)
	for _, part := range []string{"train.csv", "test.csv", "validate.csv"} {
		if _, err := os.Stat(filepath.Join(work, part)); err != nil {
			t.Fatalf("partition %s missing: %v", part, err)
		}
	}

	modelPath := filepath.Join(work, "model.json")
	execCLI(t, "train", filepath.Join(work, "train.csv"), "-t", "flag", "-m", modelPath)
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		t.Fatalf("model missing: %v", err)
	}
	if !strings.Contains(string(raw), `"amount"`) {
		t.Fatalf("expected amount selected, got model: %s", raw)
	}
	if strings.Contains(string(raw), `"noise"`) {
		t.Fatalf("noise column should not enter the model: %s", raw)
	}

	scored := filepath.Join(work, "scored.csv")
	execCLI(t, "score", filepath.Join(work, "test.csv"), "-t", "flag", "-m", modelPath, "-o", scored)
	out, err := os.ReadFile(scored)
	if err != nil {
		t.Fatalf("scored output missing: %v", err)
	}
	if !strings.Contains(string(out), "score") {
		t.Fatalf("scored csv lacks score column")
	}

	cvPath := filepath.Join(work, "cv.json")
	execCLI(t, "kfold", filepath.Join(work, "validate.csv"), "-t", "flag", "-m", modelPath,
		"--folds", "3", "--output", cvPath)
	cv, err := os.ReadFile(cvPath)
	if err != nil {
		t.Fatalf("cv output missing: %v", err)
	}
	for _, key := range []string{`"folds"`, `"summary"`, `"auc"`} {
		if !strings.Contains(string(cv), key) {
			t.Fatalf("cv json missing %s: %s", key, cv)
		}
	}
}

func TestCLI_RunPipelineAndReport(t *testing.T) {
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	defer os.Setenv("HOME", oldHome)
	os.Setenv("HOME", home)

	data := writeDataset(t, home, 200)
	execCLI(t, "run", data, "-t", "flag", "-n", "accounts-q1", "--folds", "4")

	runDir := filepath.Join(home, ".scoreloom", "runs", "accounts-q1")
	r, err := runpkg.LoadRun(runDir)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	for _, kind := range []string{"explore", "model", "crossval", "validate_scored", "artifacts", "report_html", "report_md", "metrics_xlsx"} {
		p := r.ArtifactPath(kind)
		if p == "" {
			t.Fatalf("run has no %s artifact", kind)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s artifact missing on disk: %v", kind, err)
		}
	}
	if len(r.Steps) < 7 {
		t.Fatalf("expected full step history, got %d steps", len(r.Steps))
	}

	html, err := os.ReadFile(r.ArtifactPath("report_html"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"accounts-q1", "Cross-validation", "data:image/png;base64,"} {
		if !strings.Contains(string(html), want) {
			t.Fatalf("report missing %q", want)
		}
	}

	// Re-render markdown from the persisted artifact bundle.
	mdPath := filepath.Join(home, "summary.md")
	execCLI(t, "report", runDir, "--format", "markdown", "-o", mdPath)
	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("markdown report missing: %v", err)
	}
	for _, want := range []string{"[MODEL]", "[TEST ASSESSMENT]", "[CROSS-VALIDATION]"} {
		if !strings.Contains(string(md), want) {
			t.Fatalf("markdown report missing %s", want)
		}
	}
}
