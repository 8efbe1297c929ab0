package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lox/deckforge/internal/event"
)

// Undo protocol failures. These are protocol misuse, not validation:
// they never mutate the log.
var (
	// ErrUndoPending rejects a new request while one is being arbitrated.
	ErrUndoPending = errors.New("An undo request is already pending")
	// ErrNoUndoPending rejects approvals and denials with nothing pending.
	ErrNoUndoPending = errors.New("no undo request is pending")
	// ErrUndoRequestMismatch rejects votes referencing a stale request id.
	ErrUndoRequestMismatch = errors.New("undo request id does not match the pending request")
)

// UndoRequest is the in-flight arbitration record. It exists only while
// an undo is pending; at most one exists per engine instance. Needed is
// the number of participants other than the requester: approval is
// unanimous, since a rewind discards every participant's subsequent
// actions, not just the requester's.
type UndoRequest struct {
	ID          string
	By          string
	TargetID    string
	Reason      string
	Approvals   map[string]bool
	Needed      int
	RequestedAt time.Time
}

func (r *UndoRequest) clone() *UndoRequest {
	c := *r
	c.Approvals = make(map[string]bool, len(r.Approvals))
	for p := range r.Approvals {
		c.Approvals[p] = true
	}
	return &c
}

// PendingUndo returns a copy of the in-flight undo request, or nil.
func (e *Engine) PendingUndo() *UndoRequest {
	if e.pending == nil {
		return nil
	}
	return e.pending.clone()
}

// RequestUndo opens an undo arbitration rewinding the log to just after
// targetID. It fails while another request is pending, and emits an
// UNDO_REQUESTED event otherwise. With no other participants the undo
// executes immediately.
func (e *Engine) RequestUndo(byPlayer, targetID, reason string) error {
	if e.pending != nil {
		return ErrUndoPending
	}
	if !e.hasEvent(targetID) {
		return fmt.Errorf("%w: %s", ErrEventNotFound, targetID)
	}
	participants := len(e.State().Order)
	if participants == 0 {
		return errors.New("no participants to arbitrate an undo")
	}
	if !e.isParticipant(byPlayer) {
		return fmt.Errorf("%s is not a participant", byPlayer)
	}

	e.pending = &UndoRequest{
		ID:          uuid.NewString(),
		By:          byPlayer,
		TargetID:    targetID,
		Reason:      reason,
		Approvals:   make(map[string]bool),
		Needed:      participants - 1,
		RequestedAt: e.clock.Now(),
	}
	e.logger.Info("undo requested", "by", byPlayer, "target", targetID, "needed", e.pending.Needed)

	requested := e.append(event.Event{
		Type:      event.TypeUndoRequested,
		Player:    byPlayer,
		RequestID: e.pending.ID,
		TargetID:  targetID,
		Reason:    reason,
	})

	if e.pending.Needed == 0 {
		e.executeUndo()
		return nil
	}
	e.notify([]event.Event{requested})
	return nil
}

// ApproveUndo records a participant's approval of the pending request.
// When every participant other than the requester has approved, the
// undo executes: the causal chain of the target is retained, everything
// after it is discarded, and an UNDO_EXECUTED event is appended to the
// truncated log.
func (e *Engine) ApproveUndo(player, requestID string) error {
	if e.pending == nil {
		return ErrNoUndoPending
	}
	if requestID != e.pending.ID {
		return ErrUndoRequestMismatch
	}
	if player == e.pending.By {
		return errors.New("the requester's approval is implicit")
	}
	if !e.isParticipant(player) {
		return fmt.Errorf("%s is not a participant", player)
	}

	e.pending.Approvals[player] = true
	e.logger.Debug("undo approved", "player", player, "approvals", len(e.pending.Approvals), "needed", e.pending.Needed)

	if len(e.pending.Approvals) >= e.pending.Needed {
		e.executeUndo()
		return nil
	}
	// Approval still short: no log mutation, but subscribers learn of
	// the updated pending state.
	e.notify(nil)
	return nil
}

// DenyUndo vetoes the pending request. A single dissenting participant
// blocks the rewind regardless of prior approvals; future votes for the
// old request id become invalid.
func (e *Engine) DenyUndo(player, requestID string) error {
	if e.pending == nil {
		return ErrNoUndoPending
	}
	if requestID != e.pending.ID {
		return ErrUndoRequestMismatch
	}
	if !e.isParticipant(player) {
		return fmt.Errorf("%s is not a participant", player)
	}

	e.logger.Info("undo denied", "by", player, "target", e.pending.TargetID)
	e.pending = nil
	denied := e.append(event.Event{
		Type:      event.TypeUndoDenied,
		Player:    player,
		RequestID: requestID,
	})
	e.notify([]event.Event{denied})
	return nil
}

// executeUndo truncates the log to the pending target's causal chain and
// appends an UNDO_EXECUTED marker to the already-truncated log. The
// marker carries the id of what was the last event before removal so
// receivers can tell the log shrank and request a full resync.
func (e *Engine) executeUndo() {
	req := e.pending
	e.pending = nil

	lastID := ""
	if n := len(e.events); n > 0 {
		lastID = e.events[n-1].ID
	}
	retained := event.RemoveChain(req.TargetID, e.events)
	e.logger.Info("undo executed", "target", req.TargetID, "removed", len(e.events)-len(retained))

	e.events = append([]event.Event(nil), retained...)
	e.memo = nil
	e.gen.SyncPast(e.events)

	executed := e.append(event.Event{
		Type:      event.TypeUndoExecuted,
		RequestID: req.ID,
		TargetID:  req.TargetID,
		LastID:    lastID,
	})
	e.notify([]event.Event{executed})
}

func (e *Engine) hasEvent(id string) bool {
	for _, evt := range e.events {
		if evt.ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) isParticipant(player string) bool {
	for _, p := range e.State().Order {
		if p == player {
			return true
		}
	}
	return false
}
