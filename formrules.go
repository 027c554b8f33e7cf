package formrules

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formrules/pkg/fieldvalidator"
	"github.com/goliatone/go-formrules/pkg/host"
	"github.com/goliatone/go-formrules/pkg/manifest"
	"github.com/goliatone/go-formrules/pkg/rules"
)

// DefaultURLMessage is the notification shown by URLValidator.
const DefaultURLMessage = "Please enter a valid URL"

// Validator aliases fieldvalidator.Validator for callers importing only the
// top-level module.
type Validator = fieldvalidator.Validator

// Option aliases fieldvalidator.Option.
type Option = fieldvalidator.Option

// ManifestForm aliases manifest.Form.
type ManifestForm = manifest.Form

// NewValidator binds rule to fieldName. The notification key defaults to the
// field name.
func NewValidator(fieldName string, rule rules.Rule, options ...Option) (*Validator, error) {
	return fieldvalidator.New(fieldName, rule, options...)
}

// URLValidator returns the stock URL check for fieldName. Later options
// override the default message.
func URLValidator(fieldName string, options ...Option) (*Validator, error) {
	opts := append([]Option{fieldvalidator.WithMessage(DefaultURLMessage)}, options...)
	return fieldvalidator.New(fieldName, rules.URL(), opts...)
}

// LoadManifest reads every manifest document under fsys.
func LoadManifest(fsys fs.FS) (*manifest.Store, error) {
	return manifest.LoadFS(fsys)
}

// Attach builds the validators described by form and registers them with
// target. Fields the host does not expose are logged and skipped.
func Attach(ctx context.Context, target host.FormContext, form manifest.Form, options ...manifest.BuildOption) (*fieldvalidator.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fieldvalidator.ErrFormRequired
	}
	set, err := form.Build(options...)
	if err != nil {
		return nil, fmt.Errorf("formrules: attach %q: %w", form.ID, err)
	}
	set.OnLoad(target)
	return set, nil
}
