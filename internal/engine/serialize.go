package engine

import (
	"encoding/json"
	"fmt"

	"github.com/lox/deckforge/internal/event"
)

// Serialize returns the engine's entire persistent representation: the
// event log as a single JSON array. State is never serialized; it is
// always rederived by replay.
func (e *Engine) Serialize() ([]byte, error) {
	return json.Marshal(e.events)
}

// Deserialize replaces the log with one parsed from data, as produced by
// Serialize. Subscribers are notified with the full log.
func (e *Engine) Deserialize(data []byte) error {
	var events []event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("parse event log: %w", err)
	}
	e.LoadEvents(events)
	return nil
}
