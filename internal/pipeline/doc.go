// Package pipeline derives PRODUCE import records from an Arc Flow export.
//
// Every stage is a pure function over in-memory collections. Identifiers are
// handed out by an IDAllocator owned by the caller, so a run can be repeated on
// the same input and yields identical output. The package must not perform I/O
// or logging; diagnostics are returned as warning strings.
package pipeline
