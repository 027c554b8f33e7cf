// Package rules holds pure field validation predicates. Rules never perform
// side effects; binding a rule to a field and mutating notifications is the
// job of package fieldvalidator.
//
// String-format checks (url, email, arbitrary tags) are delegated to
// github.com/go-playground/validator/v10. Values that a rule cannot classify
// produce an evaluation error, which Evaluate reports as an invalid verdict.
package rules
