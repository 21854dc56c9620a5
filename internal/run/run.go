package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/scoreloom/internal/utils"
)

const runFileName = "run.json"

// Run represents a persisted modeling run on disk: the dataset it started
// from, the configuration snapshot it used, and the artifacts each step
// produced.
type Run struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Dataset   string            `json:"dataset"`
	Target    string            `json:"target"`
	Config    map[string]any    `json:"config,omitempty"`
	Steps     []Step            `json:"steps"`
	Artifacts map[string]string `json:"artifacts"` // kind -> relative path
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Not serialized: on-disk location of the run.json
	rootDir string
}

// Step is one completed workflow stage with a short human note.
type Step struct {
	Name       string    `json:"name"`
	Note       string    `json:"note,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRun constructs an in-memory run. Call Save() to persist.
func NewRun(name, datasetPath, target, rootDir string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Name:      name,
		Dataset:   datasetPath,
		Target:    target,
		Artifacts: make(map[string]string),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// LoadRun loads a run.json from the provided directory.
func LoadRun(dir string) (*Run, error) {
	path := filepath.Join(dir, runFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	r.rootDir = dir
	return &r, nil
}

// RootDir returns the on-disk run directory path.
func (r *Run) RootDir() string { return r.rootDir }

// Save writes run.json using atomic write.
func (r *Run) Save() error {
	if r.rootDir == "" {
		return errors.New("run root directory not set")
	}
	if err := utils.EnsureDir(r.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	r.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(r.rootDir, runFileName), data)
}

// RecordStep appends a completed stage to the run's history.
func (r *Run) RecordStep(name, note string) {
	r.Steps = append(r.Steps, Step{Name: name, Note: note, FinishedAt: time.Now()})
	r.UpdatedAt = time.Now()
}

// AddArtifact registers a produced file under a stable kind key. Paths are
// stored relative to the run directory when possible.
func (r *Run) AddArtifact(kind, path string) {
	if rel, err := filepath.Rel(r.rootDir, path); err == nil && !filepath.IsAbs(rel) {
		path = rel
	}
	if r.Artifacts == nil {
		r.Artifacts = make(map[string]string)
	}
	r.Artifacts[kind] = path
	r.UpdatedAt = time.Now()
}

// ArtifactPath resolves an artifact's absolute path, or "" if absent.
func (r *Run) ArtifactPath(kind string) string {
	p, ok := r.Artifacts[kind]
	if !ok {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.rootDir, p)
}
