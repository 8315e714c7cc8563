package manifest

import (
	"fmt"

	"github.com/wastetrack/backend/internal/domain/event"
)

// FieldID is the state field holding the document identifier, seeded
// from the stream id on creation.
const FieldID = "id"

// FieldStatus is the state field carrying the document's lifecycle
// status, driven by signature events.
const FieldStatus = "status"

// FieldIsDeleted is the soft-delete tombstone flag. Deletion never
// removes history; replaying up to an instant before the tombstone
// reconstructs the pre-deletion state.
const FieldIsDeleted = "isDeleted"

// fieldContent is the payload key carrying the approved correction in
// a revision-applied event.
const fieldContent = "content"

// Reducer builds the family's fold function from its descriptor. The
// returned reducer matches exhaustively over the family's closed event
// type set and fails loudly on anything else.
func (d *Descriptor) Reducer() event.Reducer {
	return func(state event.State, evt event.Event) (event.State, error) {
		switch evt.Type {
		case d.CreatedType:
			normalized, err := d.Normalize(evt.Data)
			if err != nil {
				return nil, err
			}
			next := event.State{FieldID: evt.StreamID}
			for field, value := range normalized {
				next[field] = value
			}
			return next, nil

		case d.UpdatedType:
			normalized, err := d.Normalize(evt.Data)
			if err != nil {
				return nil, err
			}
			return mergeOver(state, normalized), nil

		case d.SignedType:
			// A signature is a state-machine transition: it overwrites
			// the status-bearing fields only, leaving everything else
			// untouched.
			next := state.Clone()
			for _, field := range d.StatusFields {
				if value, ok := evt.Data[field]; ok {
					next[field] = value
				}
			}
			return next, nil

		case d.DeletedType:
			next := state.Clone()
			next[FieldIsDeleted] = true
			return next, nil

		case d.RevisionAppliedType:
			content, ok := evt.Data[fieldContent].(map[string]any)
			if !ok {
				return nil, &event.MalformedPayloadError{
					Field: fieldContent,
					Value: evt.Data[fieldContent],
					Err:   fmt.Errorf("revision event without content object"),
				}
			}
			normalized, err := d.Normalize(content)
			if err != nil {
				return nil, err
			}
			return mergeOver(state, normalized), nil

		default:
			return nil, &event.UnhandledEventTypeError{StreamID: evt.StreamID, EventType: evt.Type}
		}
	}
}

// mergeOver lays the normalized payload over the current state,
// last-write-wins per field: a field present in the payload always
// overwrites, a field absent in the payload is left untouched.
func mergeOver(state event.State, normalized event.State) event.State {
	next := state.Clone()
	for field, value := range normalized {
		next[field] = value
	}
	return next
}
