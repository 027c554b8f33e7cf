package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/fieldvalidator"
	"github.com/goliatone/go-formrules/pkg/messages"
	"github.com/goliatone/go-formrules/pkg/rules"
)

// ErrDuplicateKey is returned when two bindings on one field resolve to the
// same notification key.
var ErrDuplicateKey = errors.New("manifest: duplicate notification key")

// Form lists the rule bindings attached to one form when it loads.
type Form struct {
	ID     string    `json:"id" yaml:"id"`
	Source string    `json:"-" yaml:"-"`
	Fields []Binding `json:"fields" yaml:"fields"`
}

// Binding attaches one rule to one field. Key defaults to the field name, or
// to "<field>.<rule>" when the field carries more than one binding.
type Binding struct {
	Field      string            `json:"field" yaml:"field"`
	Rule       string            `json:"rule" yaml:"rule"`
	Params     map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	MessageKey string            `json:"messageKey,omitempty" yaml:"messageKey,omitempty"`
	Key        string            `json:"key,omitempty" yaml:"key,omitempty"`
}

// FieldNames returns the distinct bound field names in binding order.
func (f Form) FieldNames() []string {
	seen := make(map[string]struct{}, len(f.Fields))
	out := make([]string, 0, len(f.Fields))
	for _, binding := range f.Fields {
		if _, ok := seen[binding.Field]; ok {
			continue
		}
		seen[binding.Field] = struct{}{}
		out = append(out, binding.Field)
	}
	return out
}

// NotificationKeys returns the notification key of each binding, in binding
// order. Bindings sharing a field and key would replace each other's handler,
// so that is reported as ErrDuplicateKey.
func (f Form) NotificationKeys() ([]string, error) {
	perField := make(map[string]int, len(f.Fields))
	for _, binding := range f.Fields {
		perField[binding.Field]++
	}

	keys := make([]string, len(f.Fields))
	seen := make(map[[2]string]int, len(f.Fields))
	for idx, binding := range f.Fields {
		key := strings.TrimSpace(binding.Key)
		switch {
		case key != "":
		case perField[binding.Field] > 1:
			key = binding.Field + "." + binding.Rule
		default:
			key = binding.Field
		}
		pair := [2]string{binding.Field, key}
		if first, dup := seen[pair]; dup {
			return nil, fmt.Errorf("%w: form %q bindings %d and %d on field %q use key %q",
				ErrDuplicateKey, f.ID, first, idx, binding.Field, key)
		}
		seen[pair] = idx
		keys[idx] = key
	}
	return keys, nil
}

// BuildOption configures Form.Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	registry   *rules.Registry
	translator messages.Translator
	locale     string
	logger     *zap.Logger
}

// WithRegistry resolves rule names through reg instead of the built-ins.
func WithRegistry(reg *rules.Registry) BuildOption {
	return func(cfg *buildConfig) {
		if reg != nil {
			cfg.registry = reg
		}
	}
}

// WithTranslator localises binding messages that declare a messageKey.
func WithTranslator(t messages.Translator, locale string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.translator = t
		cfg.locale = locale
	}
}

// WithLogger passes logger to every validator built.
func WithLogger(logger *zap.Logger) BuildOption {
	return func(cfg *buildConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Build constructs one validator per binding and groups them in a Set.
func (f Form) Build(options ...BuildOption) (*fieldvalidator.Set, error) {
	cfg := buildConfig{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.registry == nil {
		cfg.registry = rules.NewRegistry()
	}

	keys, err := f.NotificationKeys()
	if err != nil {
		return nil, err
	}

	set := fieldvalidator.NewSet()
	for idx, binding := range f.Fields {
		rule, err := cfg.registry.Build(binding.Rule, binding.Params)
		if err != nil {
			return nil, fmt.Errorf("manifest: form %q binding %d (%s): %w", f.ID, idx, binding.Field, err)
		}

		opts := []fieldvalidator.Option{
			fieldvalidator.WithLogger(cfg.logger.With(zap.String("form", f.ID))),
			fieldvalidator.WithMessage(binding.Message),
			fieldvalidator.WithKey(keys[idx]),
		}
		if binding.MessageKey != "" && cfg.translator != nil {
			opts = append(opts,
				fieldvalidator.WithTranslator(cfg.translator, binding.MessageKey),
				fieldvalidator.WithLocale(cfg.locale),
			)
		}

		v, err := fieldvalidator.New(binding.Field, rule, opts...)
		if err != nil {
			return nil, fmt.Errorf("manifest: form %q binding %d: %w", f.ID, idx, err)
		}
		set.Add(v)
	}
	return set, nil
}

func normaliseForm(raw Form, id, source string) (Form, error) {
	form := Form{ID: id, Source: source, Fields: make([]Binding, 0, len(raw.Fields))}
	for idx, binding := range raw.Fields {
		binding.Field = strings.TrimSpace(binding.Field)
		binding.Rule = strings.TrimSpace(binding.Rule)
		binding.Key = strings.TrimSpace(binding.Key)
		binding.MessageKey = strings.TrimSpace(binding.MessageKey)
		if binding.Field == "" {
			return Form{}, fmt.Errorf("manifest: form %q (file %s) binding %d has no field", id, source, idx)
		}
		if binding.Rule == "" {
			return Form{}, fmt.Errorf("manifest: form %q (file %s) binding %d (%s) has no rule", id, source, idx, binding.Field)
		}
		if len(binding.Params) > 0 {
			params := make(map[string]string, len(binding.Params))
			for k, v := range binding.Params {
				params[k] = v
			}
			binding.Params = params
		}
		form.Fields = append(form.Fields, binding)
	}
	if _, err := form.NotificationKeys(); err != nil {
		return Form{}, fmt.Errorf("manifest: file %s: %w", source, err)
	}
	return form, nil
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
