// Package host defines the narrow capability interfaces a Form Host exposes to
// field rules: looking up a field, reading its value, subscribing to its change
// events, and setting or clearing notifications on the controls bound to it.
//
// The host object model is owned by the embedding application. Validators only
// read values and signal through these interfaces; they never cache or mutate
// field values.
package host
