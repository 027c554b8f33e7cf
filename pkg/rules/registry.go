package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Built-in rule identifiers exposed by the registry.
const (
	NameURL       = "url"
	NameRequired  = "required"
	NameEmail     = "email"
	NamePattern   = "pattern"
	NameMaxLength = "maxLength"
	NameTag       = "tag"
)

// Factory builds a rule from string parameters taken from a manifest.
type Factory func(params map[string]string) (Rule, error)

// Registry resolves rule names to factories. The zero value is not usable;
// construct one with NewRegistry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry constructs a registry with the built-in rules registered.
func NewRegistry() *Registry {
	reg := &Registry{factories: make(map[string]Factory)}
	reg.registerBuiltins()
	return reg
}

// Register adds a named factory. Names are case-sensitive and must be unique.
func (r *Registry) Register(name string, factory Factory) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || factory == nil {
		return fmt.Errorf("rules: register: name and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[trimmed]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRule, trimmed)
	}
	r.factories[trimmed] = factory
	return nil
}

// Build resolves name and constructs the rule. The "optional" param wraps the
// result with Optional when set to a true value.
func (r *Registry) Build(name string, params map[string]string) (Rule, error) {
	trimmed := strings.TrimSpace(name)
	r.mu.RLock()
	factory, ok := r.factories[trimmed]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, trimmed)
	}

	rule, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("rules: build %q: %w", trimmed, err)
	}
	if raw, set := params["optional"]; set {
		optional, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("rules: build %q: optional: %w", trimmed, err)
		}
		if optional {
			rule = Optional(rule)
		}
	}
	return rule, nil
}

// Names lists registered rule names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) registerBuiltins() {
	r.factories[NameURL] = func(map[string]string) (Rule, error) { return URL(), nil }
	r.factories[NameRequired] = func(map[string]string) (Rule, error) { return Required(), nil }
	r.factories[NameEmail] = func(map[string]string) (Rule, error) { return Email(), nil }
	r.factories[NamePattern] = func(params map[string]string) (Rule, error) {
		expr, ok := params["pattern"]
		if !ok || expr == "" {
			return nil, fmt.Errorf("%w: pattern", ErrMissingParam)
		}
		return Pattern(expr)
	}
	r.factories[NameMaxLength] = func(params map[string]string) (Rule, error) {
		raw := strings.TrimSpace(params["value"])
		if raw == "" {
			return nil, fmt.Errorf("%w: value", ErrMissingParam)
		}
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("rules: maxLength value %q is not a non-negative integer", raw)
		}
		return MaxLength(limit), nil
	}
	r.factories[NameTag] = func(params map[string]string) (Rule, error) {
		tag := strings.TrimSpace(params["tag"])
		if tag == "" {
			return nil, fmt.Errorf("%w: tag", ErrMissingParam)
		}
		return Tag(tag), nil
	}
}
