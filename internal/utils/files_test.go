package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/scoreloom/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	if err := utils.SafeWriteFile(path, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}

	// Overwrite must replace content atomically.
	if err := utils.SafeWriteFile(path, []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "v2" {
		t.Fatalf("overwrite lost: %s", got)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"folds": 5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"folds\": 5") {
		t.Fatalf("expected indented output, got %s", b)
	}
	if _, err := utils.PrettyJSON(func() {}); err == nil {
		t.Fatalf("expected error for unmarshalable value")
	}
}

func TestFindRunRoot(t *testing.T) {
	root := t.TempDir()
	runDir := filepath.Join(root, "runs", "q1")
	nested := filepath.Join(runDir, "charts")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "run.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := utils.FindRunRoot(nested)
	if err != nil {
		t.Fatalf("find from nested dir: %v", err)
	}
	if got != runDir {
		t.Fatalf("expected %s, got %s", runDir, got)
	}

	file := filepath.Join(nested, "roc.png")
	if err := os.WriteFile(file, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = utils.FindRunRoot(file)
	if err != nil {
		t.Fatalf("find from file: %v", err)
	}
	if got != runDir {
		t.Fatalf("expected %s, got %s", runDir, got)
	}
}
