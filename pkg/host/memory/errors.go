package memory

import "errors"

var (
	// ErrFieldNameRequired is returned when a field is added without a name.
	ErrFieldNameRequired = errors.New("memory: field name is required")
	// ErrDuplicateField is returned when a field name is registered twice.
	ErrDuplicateField = errors.New("memory: duplicate field")
	// ErrLoopClosed is returned by Loop.Drain after Close.
	ErrLoopClosed = errors.New("memory: loop closed")
)
