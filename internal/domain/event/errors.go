package event

import "fmt"

// StorageError reports that the event store could not durably append
// or read. It is always surfaced to the caller; retry policy, if any,
// belongs to the caller.
type StorageError struct {
	Op  string // "append" or "read"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("event store %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UnhandledEventTypeError reports that a reducer encountered an event
// type outside its known set. It is fatal to the fold in progress:
// recovering would mean guessing semantics for unknown data. Its
// purpose is schema drift detection: a new event type introduced in
// the write path without updating every reducer must stop replay
// loudly instead of producing a silently-wrong snapshot.
type UnhandledEventTypeError struct {
	StreamID  string
	EventType string
}

func (e *UnhandledEventTypeError) Error() string {
	return fmt.Sprintf("unhandled event type %q in stream %s", e.EventType, e.StreamID)
}

// MalformedPayloadError reports a payload field that should be
// date-like or decimal-like but cannot be coerced. Treated the same as
// an unhandled type: fatal to the fold.
type MalformedPayloadError struct {
	Field string
	Value any
	Err   error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload field %q (value %v): %v", e.Field, e.Value, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}
