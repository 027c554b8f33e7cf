package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formrules/pkg/host"
	"github.com/goliatone/go-formrules/pkg/host/memory"
)

// Session acts as an interactive Form Host: it asks for each field value in
// turn, fires the change, and prints the notifications shown afterwards.
type Session struct {
	form   *memory.Form
	driver Driver
	fields []string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFields limits and orders the fields prompted for.
func WithFields(names ...string) SessionOption {
	return func(s *Session) {
		s.fields = append([]string(nil), names...)
	}
}

// NewSession builds a session over form. A nil driver uses SurveyDriver.
func NewSession(form *memory.Form, driver Driver, options ...SessionOption) *Session {
	if driver == nil {
		driver = NewSurveyDriver(nil)
	}
	s := &Session{form: form, driver: driver}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run prompts once per field. Handler errors are reported and do not stop the
// session; aborting the prompt does.
func (s *Session) Run(ctx context.Context) error {
	for _, field := range s.targets() {
		current, _ := host.StringValue(field.Value())
		value, err := s.driver.Input(ctx, InputConfig{
			Message: field.Name(),
			Default: current,
		})
		if err != nil {
			return err
		}

		if err := field.SetValue(value); err != nil {
			if infoErr := s.driver.Info(ctx, "error: "+err.Error()); infoErr != nil {
				return infoErr
			}
		}
		for _, line := range Describe(field) {
			if err := s.driver.Info(ctx, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) targets() []*memory.Field {
	if len(s.fields) == 0 {
		return s.form.Fields()
	}
	out := make([]*memory.Field, 0, len(s.fields))
	for _, name := range s.fields {
		if field, ok := s.form.Lookup(name); ok {
			out = append(out, field)
		}
	}
	return out
}

// Describe renders the notification state of every control bound to field,
// one line per notification, or a single "ok" line when none is shown.
func Describe(field *memory.Field) []string {
	var lines []string
	for _, control := range field.BoundControls() {
		notes := control.Notifications()
		keys := make([]string, 0, len(notes))
		for key := range notes {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("  [%s] %s: %s", control.ID(), key, notes[key]))
		}
	}
	if len(lines) == 0 {
		return []string{fmt.Sprintf("  %s: ok", field.Name())}
	}
	return lines
}

// FormatState renders Describe for every field of form.
func FormatState(form *memory.Form) string {
	var b strings.Builder
	for _, field := range form.Fields() {
		current, _ := host.StringValue(field.Value())
		fmt.Fprintf(&b, "%s = %q\n", field.Name(), current)
		for _, line := range Describe(field) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
