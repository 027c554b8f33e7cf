package testsupport

import (
	"sync"

	"github.com/goliatone/go-formrules/pkg/host"
)

// Call is one notification request observed by a RecordingControl.
type Call struct {
	Op      string
	Key     string
	Message string
}

const (
	OpSet   = "set"
	OpClear = "clear"
)

// RecordingControl records every notification call in order and tracks the
// resulting notification state. Setting Err makes every call fail after being
// recorded.
type RecordingControl struct {
	mu     sync.Mutex
	calls  []Call
	active map[string]string
	Err    error
}

var _ host.Control = (*RecordingControl)(nil)

// NewRecordingControl returns an empty recorder.
func NewRecordingControl() *RecordingControl {
	return &RecordingControl{active: make(map[string]string)}
}

// SetNotification implements host.NotificationSink.
func (c *RecordingControl) SetNotification(message, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpSet, Key: key, Message: message})
	if c.Err != nil {
		return c.Err
	}
	c.active[key] = message
	return nil
}

// ClearNotification implements host.NotificationSink.
func (c *RecordingControl) ClearNotification(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: OpClear, Key: key})
	if c.Err != nil {
		return c.Err
	}
	delete(c.active, key)
	return nil
}

// Calls returns the recorded calls.
func (c *RecordingControl) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Active returns a copy of the notifications currently shown.
func (c *RecordingControl) Active() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.active))
	for key, msg := range c.active {
		out[key] = msg
	}
	return out
}

// StubField is a host.Field with a settable value and caller-supplied
// controls. Tests build a fresh one per case.
type StubField struct {
	mu       sync.Mutex
	name     string
	value    any
	controls []host.Control
	keys     []string
	handlers map[string]host.ChangeHandler
}

var _ host.Field = (*StubField)(nil)

// NewStubField returns a field bound to controls.
func NewStubField(name string, value any, controls ...host.Control) *StubField {
	return &StubField{
		name:     name,
		value:    value,
		controls: controls,
		handlers: make(map[string]host.ChangeHandler),
	}
}

func (f *StubField) Name() string { return f.name }

func (f *StubField) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *StubField) Controls() []host.Control {
	return append([]host.Control(nil), f.controls...)
}

func (f *StubField) OnChange(key string, handler host.ChangeHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.handlers[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.handlers[key] = handler
}

// HandlerCount reports the number of registered handlers.
func (f *StubField) HandlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// SetValue stores value and fires the registered handlers in order, returning
// the first handler error.
func (f *StubField) SetValue(value any) error {
	f.mu.Lock()
	f.value = value
	handlers := make([]host.ChangeHandler, 0, len(f.keys))
	for _, key := range f.keys {
		handlers = append(handlers, f.handlers[key])
	}
	f.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(f); err != nil {
			return err
		}
	}
	return nil
}

// StubForm is a host.FormContext over a fixed set of fields.
type StubForm map[string]host.Field

var _ host.FormContext = StubForm(nil)

// NewStubForm indexes fields by name.
func NewStubForm(fields ...*StubField) StubForm {
	form := make(StubForm, len(fields))
	for _, field := range fields {
		form[field.Name()] = field
	}
	return form
}

func (f StubForm) Field(name string) (host.Field, bool) {
	field, ok := f[name]
	return field, ok
}
