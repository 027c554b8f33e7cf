package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formrules/pkg/manifest"
	"github.com/goliatone/go-formrules/pkg/rules"
)

const (
	extensionKey    = "x-formrules"
	jsonContentType = "application/json"
)

// ErrOperationNotFound is returned when no operation carries the requested id.
var ErrOperationNotFound = errors.New("openapi parser: operation not found")

// Options toggles document validation before extraction.
type Options struct {
	Validate bool
}

// Parser extracts rule bindings from OpenAPI request bodies using kin-openapi.
type Parser struct {
	options Options
}

// New constructs a Parser.
func New(options Options) *Parser {
	return &Parser{options: options}
}

// Bindings loads raw, locates operationID and maps each top-level property of
// its JSON request body to a rule binding, sorted by property name. Required
// properties whose rule lets a blank value through get a leading required
// binding as well.
func (p *Parser) Bindings(ctx context.Context, raw []byte, operationID string) ([]manifest.Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	op := findOperation(spec, operationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(op)
	if schema == nil {
		return nil, nil
	}

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	bindings := make([]manifest.Binding, 0, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, isRequired := required[name]
		binding, ok := bindingFor(name, ref.Value, isRequired)
		if !ok {
			continue
		}
		if isRequired && acceptsBlank(binding.Rule) {
			bindings = append(bindings, requiredBinding(name))
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec == nil || spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	if media := content.Get(jsonContentType); media != nil && media.Schema != nil {
		return media.Schema.Value
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if media := content[key]; media != nil && media.Schema != nil {
			return media.Schema.Value
		}
	}
	return nil
}

// bindingFor picks the primary rule for a property. An explicit x-formrules extension
// wins, then format, pattern, maxLength and finally required. Format and
// pattern rules on optional properties accept blank values.
func bindingFor(name string, schema *openapi3.Schema, required bool) (manifest.Binding, bool) {
	binding := manifest.Binding{Field: name}
	optional := func() {
		if !required {
			binding.Params = mergeParams(binding.Params, map[string]string{"optional": "true"})
		}
	}

	switch {
	case applyExtension(&binding, schema.Extensions[extensionKey]):
	case isURLFormat(schema.Format):
		binding.Rule = rules.NameURL
		binding.Message = "Please enter a valid URL"
		optional()
	case isEmailFormat(schema.Format):
		binding.Rule = rules.NameEmail
		binding.Message = "Please enter a valid email address"
		optional()
	case schema.Pattern != "":
		binding.Rule = rules.NamePattern
		binding.Params = map[string]string{"pattern": schema.Pattern}
		binding.Message = "Please match the requested format"
		optional()
	case schema.MaxLength != nil:
		binding.Rule = rules.NameMaxLength
		binding.Params = map[string]string{"value": strconv.FormatUint(*schema.MaxLength, 10)}
		binding.Message = fmt.Sprintf("Please use at most %d characters", *schema.MaxLength)
	case required:
		return requiredBinding(name), true
	default:
		return manifest.Binding{}, false
	}

	if binding.Message == "" && schema.Description != "" {
		binding.Message = schema.Description
	}
	return binding, binding.Rule != ""
}

func requiredBinding(name string) manifest.Binding {
	return manifest.Binding{
		Field:   name,
		Rule:    rules.NameRequired,
		Message: "This field is required",
	}
}

// acceptsBlank reports whether rule can pass an empty value on its own.
func acceptsBlank(rule string) bool {
	return rule == rules.NameMaxLength || rule == rules.NamePattern
}

// applyExtension reads x-formrules: {rule, message, messageKey, key, params}.
func applyExtension(binding *manifest.Binding, raw any) bool {
	ext, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	rule := strings.TrimSpace(stringValue(ext["rule"]))
	if rule == "" {
		return false
	}
	binding.Rule = rule
	binding.Message = stringValue(ext["message"])
	binding.MessageKey = stringValue(ext["messageKey"])
	binding.Key = stringValue(ext["key"])
	if params, ok := ext["params"].(map[string]any); ok && len(params) > 0 {
		binding.Params = make(map[string]string, len(params))
		for key, value := range params {
			binding.Params[key] = stringValue(value)
		}
	}
	return true
}

func isURLFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "uri", "url", "iri":
		return true
	default:
		return false
	}
}

func isEmailFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "email", "idn-email":
		return true
	default:
		return false
	}
}

func mergeParams(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}
