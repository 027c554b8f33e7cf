package openapi

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formrules/internal/openapi/parser"
	"github.com/goliatone/go-formrules/pkg/manifest"
)

// ErrOperationNotFound is returned when the document has no operation with the
// requested id.
var ErrOperationNotFound = parser.ErrOperationNotFound

// Option configures FormFromOperation.
type Option func(*parser.Options)

// WithValidation validates the document before extracting bindings.
func WithValidation() Option {
	return func(opts *parser.Options) {
		opts.Validate = true
	}
}

// FormFromOperation derives a manifest form from the JSON request body of
// operationID. Properties map to rules by format (uri, email), pattern,
// maxLength and required, unless an x-formrules extension names the rule
// explicitly. The form id is the operation id.
func FormFromOperation(ctx context.Context, doc Document, operationID string, options ...Option) (manifest.Form, error) {
	cfg := parser.Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	bindings, err := parser.New(cfg).Bindings(ctx, doc.Raw(), operationID)
	if err != nil {
		return manifest.Form{}, fmt.Errorf("openapi: form from %s: %w", doc.Location(), err)
	}
	return manifest.Form{ID: operationID, Source: doc.Location(), Fields: bindings}, nil
}
