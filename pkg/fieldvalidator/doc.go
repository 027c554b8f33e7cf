// Package fieldvalidator binds validation rules to fields of a host-owned form.
//
// OnLoad registers a change handler with the named field; registering again
// on the same form replaces the earlier handler. OnChange reads the value,
// evaluates the rule and then either sets a notification on every bound
// control (invalid) or clears it (valid), always under the same key. Setting
// twice keeps a single notification, and clearing an absent key is a no-op.
//
// Missing fields and controls are logged and ignored. Rule evaluation errors
// count as invalid. Host failures on notification calls are returned to the
// caller.
//
// AsyncValidator covers checks that block. Each change supersedes the
// in-flight check for the field, and verdicts are applied through a
// host.Dispatcher only when they belong to the latest change.
package fieldvalidator
