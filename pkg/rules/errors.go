package rules

import "errors"

var (
	// ErrNilRule is returned when a nil rule or rule function is evaluated.
	ErrNilRule = errors.New("rules: rule is nil")
	// ErrNotString is returned when a string rule receives a non-string value.
	ErrNotString = errors.New("rules: value is not a string")
	// ErrEmptyTag is returned by Tag rules built without a tag.
	ErrEmptyTag = errors.New("rules: validator tag is empty")
	// ErrUnknownRule is returned by the registry for unregistered names.
	ErrUnknownRule = errors.New("rules: unknown rule")
	// ErrDuplicateRule is returned when a name is registered twice.
	ErrDuplicateRule = errors.New("rules: rule already registered")
	// ErrMissingParam is returned when a factory is missing a required param.
	ErrMissingParam = errors.New("rules: missing parameter")
)
