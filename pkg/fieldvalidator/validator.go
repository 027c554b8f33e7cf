package fieldvalidator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/host"
	"github.com/goliatone/go-formrules/pkg/rules"
)

const handlerKeyPrefix = "fieldvalidator:"

// Validator binds one rule to one named field. On every change it evaluates
// the rule and sets or clears a notification, keyed by the field name unless
// overridden, on every control bound to the field.
type Validator struct {
	rule rules.Rule
	notifier
}

// New constructs a Validator for fieldName.
func New(fieldName string, rule rules.Rule, options ...Option) (*Validator, error) {
	fieldName = strings.TrimSpace(fieldName)
	if fieldName == "" {
		return nil, ErrFieldNameRequired
	}
	if rule == nil {
		return nil, ErrRuleRequired
	}
	cfg := newConfig(fieldName, options)
	return &Validator{rule: rule, notifier: newNotifier(fieldName, cfg)}, nil
}

// MustNew is New for package-level wiring; it panics on error.
func MustNew(fieldName string, rule rules.Rule, options ...Option) *Validator {
	v, err := New(fieldName, rule, options...)
	if err != nil {
		panic(err)
	}
	return v
}

// Field returns the bound field name.
func (v *Validator) Field() string { return v.field }

// Key returns the notification key.
func (v *Validator) Key() string { return v.key }

// Rule returns the bound rule.
func (v *Validator) Rule() rules.Rule { return v.rule }

// Message returns the text shown when the rule fails.
func (v *Validator) Message() string { return v.resolveMessage() }

// HandlerKey is the key the change handler is registered under. Binding twice
// on the same form replaces the earlier registration.
func (v *Validator) HandlerKey() string { return handlerKeyPrefix + v.key }

// Bind registers OnChange with the named field of form.
func (v *Validator) Bind(form host.FormContext) error {
	return bind(form, v.field, v.HandlerKey(), v.OnChange)
}

// OnLoad is the form-load entry point. A missing field is logged and ignored
// so the rest of the form-load sequence keeps running.
func (v *Validator) OnLoad(form host.FormContext) {
	if err := v.Bind(form); err != nil {
		v.logger.Warn("validator not bound", zap.Error(err))
	}
}

// OnChange validates the current value of field. A nil field or a field with
// no bound controls is logged and ignored. Rule evaluation errors count as
// invalid. Errors from the host notification calls are returned to the host's
// error boundary; there is no retry.
func (v *Validator) OnChange(field host.Field) error {
	if field == nil {
		v.logger.Warn("change event without field")
		return nil
	}
	controls := field.Controls()
	if len(controls) == 0 {
		v.logger.Warn("field has no bound controls")
		return nil
	}

	verdict := rules.Evaluate(v.rule, field.Value())
	if verdict.Err != nil {
		v.logger.Warn("rule evaluation failed; treating value as invalid",
			zap.String("rule", v.rule.Name()),
			zap.Error(verdict.Err),
		)
	}
	return v.apply(controls, verdict.Valid)
}

func bind(form host.FormContext, fieldName, handlerKey string, handler host.ChangeHandler) error {
	if form == nil {
		return ErrFormRequired
	}
	field, ok := form.Field(fieldName)
	if !ok || field == nil {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, fieldName)
	}
	field.OnChange(handlerKey, handler)
	return nil
}
