package event

// CausalChain returns the set of event ids reachable from targetID by
// following CausedBy pointers away from it, including targetID itself.
// Computed in one forward pass: because causality never points forward,
// an event's cause is always registered before the event is visited.
//
// The result always contains targetID, even when no event with that id
// exists in the log; membership does not imply existence. Events lacking
// an id cannot be registered as members and are invisible to chain
// computation even when their CausedBy would qualify them.
func CausalChain(targetID string, events []Event) map[string]bool {
	chain := map[string]bool{targetID: true}
	for _, e := range events {
		if e.ID == "" || e.CausedBy == "" {
			continue
		}
		if chain[e.CausedBy] {
			chain[e.ID] = true
		}
	}
	return chain
}

// RemoveChain returns the log retained after rewinding to just after
// targetID: every event positioned before the target, followed by the
// target's own causal chain. Everything positioned after the target that
// is not causally descended from it is discarded, including unrelated
// later root-cause events; the operation models "rewind time to the
// moment this event's effects finished", not "retract one action".
//
// If targetID is not present, the input is returned unchanged. The input
// slice is never mutated.
func RemoveChain(targetID string, events []Event) []Event {
	pos := -1
	for i, e := range events {
		if e.ID != "" && e.ID == targetID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return events
	}

	chain := CausalChain(targetID, events)
	kept := make([]Event, 0, len(events))
	kept = append(kept, events[:pos]...)
	for _, e := range events[pos:] {
		if e.ID != "" && chain[e.ID] {
			kept = append(kept, e)
		}
	}
	return kept
}
