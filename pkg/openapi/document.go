package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Document wraps a raw OpenAPI payload and where it came from. Parsing happens
// later, inside FormFromOperation.
type Document struct {
	location string
	raw      []byte
}

// NewDocument constructs a Document, copying raw.
func NewDocument(location string, raw []byte) (Document, error) {
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{location: location, raw: append([]byte(nil), raw...)}, nil
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location identifies the document origin.
func (d Document) Location() string {
	return d.location
}

// LoadFile reads a document from disk.
func LoadFile(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if path == "" {
		return Document{}, errors.New("openapi: file path is required")
	}
	clean := filepath.Clean(path)
	data, err := os.ReadFile(clean)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", clean, err)
	}
	return NewDocument(clean, data)
}

// LoadFS reads a document from fsys.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if fsys == nil {
		return Document{}, errors.New("openapi: filesystem is not configured")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("openapi: read %s: %w", name, err)
	}
	return NewDocument(name, data)
}
