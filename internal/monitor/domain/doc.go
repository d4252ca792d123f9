// Package domain contains the core types for library update detection:
// the version model, the change classifier, and the records persisted by
// the state store. Everything here is pure — no I/O, no clocks.
package domain
