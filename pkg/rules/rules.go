package rules

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formrules/pkg/host"
)

// Rule is a pure validity predicate over a field value. Check returns an error
// only when the value cannot be classified; callers treat that as invalid.
type Rule interface {
	Name() string
	Check(value any) (bool, error)
}

// Func adapts a function into a named Rule.
func Func(name string, fn func(value any) (bool, error)) Rule {
	return funcRule{name: name, fn: fn}
}

type funcRule struct {
	name string
	fn   func(value any) (bool, error)
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Check(value any) (bool, error) {
	if r.fn == nil {
		return false, fmt.Errorf("%w: %s", ErrNilRule, r.name)
	}
	return r.fn(value)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate returns the shared go-playground validator used by tag-backed
// rules. The instance is safe for concurrent use.
func Validate() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// URL accepts absolute URLs with both a scheme and a host. Nil, empty and
// whitespace-only values are invalid. Surrounding whitespace is ignored.
func URL() Rule {
	return urlRule{v: Validate()}
}

type urlRule struct {
	v *validator.Validate
}

func (urlRule) Name() string { return NameURL }

func (r urlRule) Check(value any) (bool, error) {
	raw, ok := host.StringValue(value)
	if !ok {
		if value == nil {
			return false, nil
		}
		return false, fmt.Errorf("%w: %T", ErrNotString, value)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false, nil
	}
	if err := r.v.Var(trimmed, "url"); err != nil {
		return false, nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false, nil
	}
	return parsed.Scheme != "" && parsed.Host != "", nil
}

// Required rejects nil, empty and whitespace-only values.
func Required() Rule {
	return Func(NameRequired, func(value any) (bool, error) {
		return !host.IsBlank(value), nil
	})
}

// Email accepts a single RFC 5322 address. Blank values are invalid.
func Email() Rule {
	return Tag("email")
}

// Tag runs an arbitrary go-playground validator tag against the trimmed string
// value, e.g. "url", "email", "uuid4" or "min=3,max=10". Unknown tags surface
// as evaluation errors.
func Tag(tag string) Rule {
	return tagRule{tag: strings.TrimSpace(tag), v: Validate()}
}

type tagRule struct {
	tag string
	v   *validator.Validate
}

func (r tagRule) Name() string { return NameTag + ":" + r.tag }

func (r tagRule) Check(value any) (ok bool, err error) {
	if r.tag == "" {
		return false, ErrEmptyTag
	}
	raw, isString := host.StringValue(value)
	if !isString {
		if value == nil {
			return false, nil
		}
		return false, fmt.Errorf("%w: %T", ErrNotString, value)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false, nil
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			ok = false
			err = fmt.Errorf("rules: tag %q: %v", r.tag, recovered)
		}
	}()

	if verr := r.v.Var(trimmed, r.tag); verr != nil {
		if _, invalid := verr.(*validator.InvalidValidationError); invalid {
			return false, fmt.Errorf("rules: tag %q: %w", r.tag, verr)
		}
		return false, nil
	}
	return true, nil
}

// Pattern matches the string value against a regular expression. The
// expression is compiled once; compile failures are returned immediately.
func Pattern(expr string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rules: compile pattern %q: %w", expr, err)
	}
	return Func(NamePattern, func(value any) (bool, error) {
		raw, ok := host.StringValue(value)
		if !ok {
			if value == nil {
				return re.MatchString(""), nil
			}
			return false, fmt.Errorf("%w: %T", ErrNotString, value)
		}
		return re.MatchString(raw), nil
	}), nil
}

// MaxLength limits the number of characters in the string value. Nil counts as
// empty.
func MaxLength(limit int) Rule {
	return Func(NameMaxLength, func(value any) (bool, error) {
		if value == nil {
			return true, nil
		}
		raw, ok := host.StringValue(value)
		if !ok {
			return false, fmt.Errorf("%w: %T", ErrNotString, value)
		}
		return utf8.RuneCountInString(raw) <= limit, nil
	})
}

// Optional accepts blank values and defers everything else to rule.
func Optional(rule Rule) Rule {
	name := "optional"
	if rule != nil {
		name += ":" + rule.Name()
	}
	return Func(name, func(value any) (bool, error) {
		if host.IsBlank(value) {
			return true, nil
		}
		if rule == nil {
			return false, ErrNilRule
		}
		return rule.Check(value)
	})
}

// All is valid only when every rule is valid. It stops at the first failing
// rule or evaluation error.
func All(rules ...Rule) Rule {
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		if rule != nil {
			names = append(names, rule.Name())
		}
	}
	return Func(strings.Join(names, "+"), func(value any) (bool, error) {
		for _, rule := range rules {
			if rule == nil {
				return false, ErrNilRule
			}
			ok, err := rule.Check(value)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	})
}

// Verdict is the outcome of evaluating a rule. Err is set when the rule could
// not classify the value; Valid is always false in that case.
type Verdict struct {
	Valid bool
	Err   error
}

// Evaluate runs rule against value, converting evaluation errors and panics
// into invalid verdicts.
func Evaluate(rule Rule, value any) (verdict Verdict) {
	if rule == nil {
		return Verdict{Err: ErrNilRule}
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			verdict = Verdict{Err: fmt.Errorf("rules: %s panicked: %v", rule.Name(), recovered)}
		}
	}()

	ok, err := rule.Check(value)
	if err != nil {
		return Verdict{Err: err}
	}
	return Verdict{Valid: ok}
}
