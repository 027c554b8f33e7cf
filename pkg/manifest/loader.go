package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store indexes loaded forms by id.
type Store struct {
	forms map[string]Form
}

type documentFile struct {
	Forms map[string]Form `json:"forms" yaml:"forms"`
}

// LoadFS walks fsys and parses every JSON/YAML manifest. Form ids must be
// unique across files. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]Form)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isManifestFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("manifest: read %s: %w", path, err)
		}
		parsed, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, form := range parsed {
			if _, exists := store.forms[form.ID]; exists {
				return fmt.Errorf("manifest: duplicate form %q (file %s)", form.ID, path)
			}
			store.forms[form.ID] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes one manifest document. JSON is tried first, then YAML. Forms
// are returned sorted by id.
func Parse(data []byte, source string) ([]Form, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("manifest: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("manifest: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	out := make([]Form, 0, len(doc.Forms))
	for _, rawID := range sortedKeys(doc.Forms) {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return nil, fmt.Errorf("manifest: file %s defines an empty form id", source)
		}
		form, err := normaliseForm(doc.Forms[rawID], id, source)
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
	return out, nil
}

// Form returns the form registered under id.
func (s *Store) Form(id string) (Form, bool) {
	if s == nil {
		return Form{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// Forms returns every form sorted by id.
func (s *Store) Forms() []Form {
	if s == nil {
		return nil
	}
	out := make([]Form, 0, len(s.forms))
	for _, id := range sortedKeys(s.forms) {
		out = append(out, s.forms[id])
	}
	return out
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func isManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
