package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formrules/pkg/manifest"
)

// MustLoadManifest loads every manifest file under dir. Testing helpers fail
// the test on error to keep contract tests concise.
func MustLoadManifest(t *testing.T, dir string) *manifest.Store {
	t.Helper()

	store, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	return store
}

// LoadManifest returns a Store without requiring testing.T, allowing callers
// to wire fixtures in setup functions.
func LoadManifest(dir string) (*manifest.Store, error) {
	if dir == "" {
		return nil, errors.New("testsupport: manifest dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("testsupport: stat manifest dir: %w", err)
	}
	store, err := manifest.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("testsupport: load manifest: %w", err)
	}
	return store, nil
}

// MustLoadForm loads a JSON golden file into a manifest.Form.
func MustLoadForm(t *testing.T, path string) manifest.Form {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load golden: %v", err)
	}
	var out manifest.Form
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	return out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}
