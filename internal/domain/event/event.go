package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Payload carries the type-specific data of an event. Its shape is
// determined by the event type; consumers discriminate on Event.Type
// before interpreting it.
type Payload map[string]any

// Event is one immutable record in a document's stream. Events are
// appended exactly once and never edited; corrections are expressed as
// new events. The stream identifier is assigned when the document is
// created and reused by every subsequent event for that document.
type Event struct {
	ID         uuid.UUID
	StreamID   string
	Type       string
	Actor      string
	Data       Payload
	OccurredAt time.Time
	// Seq is the append-order key assigned by the store. Within one
	// stream it is the single source of truth for "what happened when".
	Seq int64
}

// ReadOptions bound a stream read.
type ReadOptions struct {
	// Until limits the read to events whose OccurredAt is less than or
	// equal to the given instant. Nil means unbounded ("now").
	Until *time.Time
}

// ReadOption configures a stream read.
type ReadOption func(*ReadOptions)

// Until bounds the read at the given instant (inclusive).
func Until(t time.Time) ReadOption {
	return func(o *ReadOptions) {
		o.Until = &t
	}
}

// NewReadOptions applies the given options over defaults.
func NewReadOptions(opts []ReadOption) ReadOptions {
	var o ReadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store is the durable, append-only event log.
//
// Append never reorders or deduplicates; callers are responsible for
// not double-appending. ReadStream returns the ordered, finite stream
// for an identifier; an unknown stream yields an empty slice, not an
// error, because "no history" is a valid state.
type Store interface {
	Append(ctx context.Context, evt *Event) error
	ReadStream(ctx context.Context, streamID string, opts ...ReadOption) ([]Event, error)
}

// New creates an event ready for appending. OccurredAt defaults to the
// current time when zero.
func New(streamID, eventType, actor string, data Payload) *Event {
	return &Event{
		ID:         uuid.New(),
		StreamID:   streamID,
		Type:       eventType,
		Actor:      actor,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
