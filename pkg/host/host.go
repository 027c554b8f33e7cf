package host

import (
	"fmt"
	"strings"
)

// FormContext is the slice of the host form object model a rule binding needs:
// the ability to look up a field by its logical name. Hosts own the fields and
// their controls; callers never create or destroy them.
type FormContext interface {
	Field(name string) (Field, bool)
}

// FieldReader exposes the current value of a named field.
type FieldReader interface {
	Name() string
	Value() any
}

// Field is a named data slot on a form together with the controls bound to it
// and the host's change-event subscription.
type Field interface {
	FieldReader

	// Controls returns the UI controls bound to the field, in host order.
	Controls() []Control

	// OnChange registers handler under key. Registering again with the same
	// key replaces the previous handler.
	OnChange(key string, handler ChangeHandler)
}

// NotificationSink is the notification capability of a bound control.
type NotificationSink interface {
	SetNotification(message, key string) error
	// ClearNotification removes the notification stored under key. Clearing a
	// key that is not set is a no-op.
	ClearNotification(key string) error
}

// Control is a UI presentation of a field.
type Control interface {
	NotificationSink
}

// ChangeHandler reacts to a field change. Returned errors propagate to the
// host's own error boundary.
type ChangeHandler func(Field) error

// Dispatcher marshals work onto the host's logical UI thread.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function into a Dispatcher.
type DispatcherFunc func(fn func())

// Post calls the underlying function.
func (d DispatcherFunc) Post(fn func()) {
	d(fn)
}

// Inline runs posted work immediately on the calling goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// StringValue normalises the loosely typed values hosts hand out. It reports
// false for nil and for values that have no string form.
func StringValue(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, true
	case *string:
		if typed == nil {
			return "", false
		}
		return *typed, true
	case []byte:
		return string(typed), true
	case fmt.Stringer:
		return typed.String(), true
	default:
		return "", false
	}
}

// IsBlank reports whether the value is nil, empty, or whitespace only.
func IsBlank(value any) bool {
	str, ok := StringValue(value)
	if !ok {
		return value == nil
	}
	return strings.TrimSpace(str) == ""
}
