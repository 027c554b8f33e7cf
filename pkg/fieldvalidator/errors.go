package fieldvalidator

import "errors"

var (
	// ErrFieldNameRequired is returned when a validator is built without a
	// field name.
	ErrFieldNameRequired = errors.New("fieldvalidator: field name is required")
	// ErrRuleRequired is returned when a validator is built without a rule.
	ErrRuleRequired = errors.New("fieldvalidator: rule is required")
	// ErrCheckRequired is returned when an async validator has no check.
	ErrCheckRequired = errors.New("fieldvalidator: async check is required")
	// ErrDispatcherRequired is returned when an async validator has no
	// dispatcher to post verdicts through.
	ErrDispatcherRequired = errors.New("fieldvalidator: async dispatcher is required")
	// ErrFormRequired is returned by Bind when the form context is nil.
	ErrFormRequired = errors.New("fieldvalidator: form context is nil")
	// ErrFieldNotFound is returned by Bind when the host has no such field.
	ErrFieldNotFound = errors.New("fieldvalidator: field not found")
	// ErrClosed is returned by an async validator after Close.
	ErrClosed = errors.New("fieldvalidator: validator closed")
)
