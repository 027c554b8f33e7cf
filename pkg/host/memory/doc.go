// Package memory provides an in-memory Form Host: forms, fields with keyed
// change-handler registration, controls that store notifications by key, and a
// serial dispatch loop. The CLI and the test suites drive validators through
// it.
package memory
