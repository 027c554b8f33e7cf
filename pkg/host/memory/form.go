package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formrules/pkg/host"
)

// Form is an in-memory form instance. It owns its fields and their controls
// for the lifetime of the instance, the same way an embedding host would.
type Form struct {
	mu     sync.RWMutex
	fields map[string]*Field
	order  []string
}

// Ensure the implementation satisfies the host contract.
var _ host.FormContext = (*Form)(nil)

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{fields: make(map[string]*Field)}
}

// AddField creates a field with an initial value and the supplied controls.
// When no controls are given a single control is created.
func (f *Form) AddField(name string, value any, controls ...*Control) (*Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFieldNameRequired
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.fields[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	if len(controls) == 0 {
		controls = []*Control{NewControl(name)}
	}

	field := &Field{
		name:     name,
		value:    value,
		controls: append([]*Control(nil), controls...),
		handlers: make(map[string]host.ChangeHandler),
	}
	f.fields[name] = field
	f.order = append(f.order, name)
	return field, nil
}

// MustAddField is AddField for fixtures; it panics on error.
func (f *Form) MustAddField(name string, value any, controls ...*Control) *Field {
	field, err := f.AddField(name, value, controls...)
	if err != nil {
		panic(err)
	}
	return field
}

// Field implements host.FormContext.
func (f *Form) Field(name string) (host.Field, bool) {
	field, ok := f.Lookup(name)
	if !ok {
		return nil, false
	}
	return field, true
}

// Lookup returns the concrete field registered under name.
func (f *Form) Lookup(name string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	field, ok := f.fields[name]
	return field, ok
}

// Fields returns the fields in insertion order.
func (f *Form) Fields() []*Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Field, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.fields[name])
	}
	return out
}

// Field is an in-memory field. SetValue fires change handlers synchronously,
// mimicking a host that serialises change events on a single UI thread.
type Field struct {
	mu       sync.Mutex
	name     string
	value    any
	controls []*Control
	keys     []string
	handlers map[string]host.ChangeHandler
}

var _ host.Field = (*Field)(nil)

// Name implements host.FieldReader.
func (f *Field) Name() string {
	return f.name
}

// Value implements host.FieldReader.
func (f *Field) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Controls implements host.Field.
func (f *Field) Controls() []host.Control {
	out := make([]host.Control, len(f.controls))
	for i, control := range f.controls {
		out[i] = control
	}
	return out
}

// BoundControls returns the concrete controls bound to the field.
func (f *Field) BoundControls() []*Control {
	return append([]*Control(nil), f.controls...)
}

// OnChange implements host.Field. The handler keeps the position of the first
// registration under the same key.
func (f *Field) OnChange(key string, handler host.ChangeHandler) {
	if handler == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.handlers[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.handlers[key] = handler
}

// RemoveOnChange drops the handler registered under key.
func (f *Field) RemoveOnChange(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.handlers[key]; !exists {
		return
	}
	delete(f.handlers, key)
	for i, existing := range f.keys {
		if existing == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// HandlerKeys lists registered handler keys in dispatch order.
func (f *Field) HandlerKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

// SetValue stores the value and dispatches every change handler in order. All
// handlers run even when one fails; their errors are joined.
func (f *Field) SetValue(value any) error {
	f.mu.Lock()
	f.value = value
	handlers := make([]host.ChangeHandler, 0, len(f.keys))
	for _, key := range f.keys {
		handlers = append(handlers, f.handlers[key])
	}
	f.mu.Unlock()

	return f.dispatch(handlers)
}

// FireOnChange dispatches the handlers without changing the value, the way a
// host re-runs change logic on form load.
func (f *Field) FireOnChange() error {
	f.mu.Lock()
	handlers := make([]host.ChangeHandler, 0, len(f.keys))
	for _, key := range f.keys {
		handlers = append(handlers, f.handlers[key])
	}
	f.mu.Unlock()

	return f.dispatch(handlers)
}

func (f *Field) dispatch(handlers []host.ChangeHandler) error {
	var errs []error
	for _, handler := range handlers {
		if err := handler(f); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("memory: field %q change: %w", f.name, errors.Join(errs...))
}

// Notifications collects the notifications of every bound control keyed by
// control id.
func (f *Field) Notifications() map[string]map[string]string {
	out := make(map[string]map[string]string, len(f.controls))
	for _, control := range f.controls {
		out[control.ID()] = control.Notifications()
	}
	return out
}

// Control is an in-memory UI control. Notifications are stored by key, so
// setting the same key twice keeps a single entry.
type Control struct {
	mu            sync.Mutex
	id            string
	notifications map[string]string
	fail          func(op, key string) error
}

var _ host.Control = (*Control)(nil)

// NewControl returns a control with no notifications.
func NewControl(id string) *Control {
	return &Control{id: id, notifications: make(map[string]string)}
}

// ID returns the control identifier.
func (c *Control) ID() string {
	return c.id
}

// FailWith installs a hook that can reject notification calls. Passing nil
// removes it.
func (c *Control) FailWith(fn func(op, key string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fn
}

// SetNotification implements host.NotificationSink.
func (c *Control) SetNotification(message, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		if err := c.fail(OpSet, key); err != nil {
			return err
		}
	}
	c.notifications[key] = message
	return nil
}

// ClearNotification implements host.NotificationSink.
func (c *Control) ClearNotification(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		if err := c.fail(OpClear, key); err != nil {
			return err
		}
	}
	delete(c.notifications, key)
	return nil
}

// Notification returns the message stored under key.
func (c *Control) Notification(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.notifications[key]
	return msg, ok
}

// Notifications returns a copy of the active notifications.
func (c *Control) Notifications() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.notifications))
	for key, msg := range c.notifications {
		out[key] = msg
	}
	return out
}

// Keys returns the active notification keys sorted.
func (c *Control) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.notifications))
	for key := range c.notifications {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

const (
	OpSet   = "set"
	OpClear = "clear"
)
