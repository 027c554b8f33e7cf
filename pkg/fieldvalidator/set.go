package fieldvalidator

import (
	"errors"
	"io"

	"github.com/goliatone/go-formrules/pkg/host"
)

// Binder is anything that can attach itself to a loaded form.
type Binder interface {
	Field() string
	OnLoad(form host.FormContext)
	Bind(form host.FormContext) error
}

var (
	_ Binder = (*Validator)(nil)
	_ Binder = (*AsyncValidator)(nil)
)

// Set groups the validators of one form so a single form-load call binds them
// all. A validator whose field is missing does not stop the others.
type Set struct {
	binders []Binder
}

// NewSet returns a set containing binders.
func NewSet(binders ...Binder) *Set {
	s := &Set{}
	s.Add(binders...)
	return s
}

// Add appends binders, skipping nil entries.
func (s *Set) Add(binders ...Binder) {
	for _, binder := range binders {
		if binder != nil {
			s.binders = append(s.binders, binder)
		}
	}
}

// Binders returns the binders in registration order.
func (s *Set) Binders() []Binder {
	return append([]Binder(nil), s.binders...)
}

// Len reports the number of binders.
func (s *Set) Len() int {
	return len(s.binders)
}

// OnLoad binds every validator, logging missing fields.
func (s *Set) OnLoad(form host.FormContext) {
	for _, binder := range s.binders {
		binder.OnLoad(form)
	}
}

// Bind binds every validator and returns the joined binding errors. All
// binders are attempted.
func (s *Set) Bind(form host.FormContext) error {
	var errs []error
	for _, binder := range s.binders {
		if err := binder.Bind(form); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes binders that hold resources, such as async validators.
func (s *Set) Close() error {
	var errs []error
	for _, binder := range s.binders {
		if closer, ok := binder.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
