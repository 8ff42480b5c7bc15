package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestWorkspace is a temporary directory with a fleetdb config whose
// database, archive and export paths all live inside it.
type TestWorkspace struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestWorkspace creates a new workspace builder.
// Call Build() to create the directory.
func NewTestWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return &TestWorkspace{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file relative to the workspace root.
func (w *TestWorkspace) WithFile(path, content string) *TestWorkspace {
	w.files[path] = content
	return w
}

// WithCatalog writes the fixture catalog to catalog.yaml.
func (w *TestWorkspace) WithCatalog() *TestWorkspace {
	return w.WithFile("catalog.yaml", CatalogYAML)
}

// Build creates the workspace directory, its config and all configured files.
func (w *TestWorkspace) Build() *TestWorkspace {
	w.t.Helper()

	w.Path = w.t.TempDir()

	config := fmt.Sprintf(`database = %q
archive_dir = %q
export_dir = %q
log_level = "error"
log_format = "json"
`,
		filepath.Join(w.Path, "data", "fleetdb.db"),
		filepath.Join(w.Path, "data", "raw"),
		filepath.Join(w.Path, "data", "export"),
	)
	w.writeFile("config.toml", config)

	for path, content := range w.files {
		w.writeFile(path, content)
	}
	return w
}

// ConfigPath returns the path of the generated config file.
func (w *TestWorkspace) ConfigPath() string {
	return filepath.Join(w.Path, "config.toml")
}

func (w *TestWorkspace) writeFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file relative to the workspace root.
func (w *TestWorkspace) ReadFile(relPath string) string {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, relPath)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the workspace.
func (w *TestWorkspace) FileExists(relPath string) bool {
	w.t.Helper()
	_, err := os.Stat(filepath.Join(w.Path, relPath))
	return err == nil
}
