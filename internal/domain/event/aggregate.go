package event

// State is the partial projection of a document built by folding its
// stream. It is not guaranteed complete at every point (right after a
// created event some fields are absent); consumers must tolerate
// partial state. Absent fields are omitted, never set to nil.
type State map[string]any

// Reducer folds one event into the accumulated state. Reducers must be
// pure: no I/O, no clock reads, and no mutation of the input state.
// A reducer that encounters an event type it does not recognize must
// return an error rather than skip the event.
type Reducer func(state State, evt Event) (State, error)

// Aggregate applies the reducer left-to-right over the ordered event
// sequence, threading the accumulator. It is deterministic: the same
// sequence always yields the same state, which is what makes replayed
// snapshots trustworthy as audit evidence.
//
// A reducer error aborts the fold and no state is returned; a
// partially-folded state would look complete to a downstream consumer
// while silently missing history.
func Aggregate(events []Event, reduce Reducer, initial State) (State, error) {
	state := initial
	if state == nil {
		state = State{}
	}
	for i := range events {
		next, err := reduce(state, events[i])
		if err != nil {
			return nil, err
		}
		state = next
	}
	return state, nil
}

// Clone returns a shallow copy of the state. Reducers copy before
// merging so the caller's accumulator is never mutated.
func (s State) Clone() State {
	out := make(State, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}
