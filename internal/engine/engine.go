// Package engine composes the event log, the projector and the command
// layer into the authoritative game engine: dispatch, forking,
// serialization, historical inspection and the undo consensus protocol.
//
// The engine is single-threaded and synchronous. Dispatch validates,
// generates, appends and notifies within one call; there is no internal
// suspension point and no locking. Concurrency only arises between
// cooperating instances exchanging events through an external transport.
package engine

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/deckforge/internal/command"
	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/game"
	"github.com/lox/deckforge/internal/randutil"
)

// ErrEventNotFound is returned when an event id is not present in the log.
var ErrEventNotFound = errors.New("event not found")

// Subscriber receives the newly appended events and the freshly
// projected state after every log mutation. Subscribers are invoked
// synchronously on the dispatching call stack, in subscription order.
type Subscriber func(newEvents []event.Event, st *game.State)

// Config configures a new engine instance.
type Config struct {
	// Resolver supplies per-card effects. Required.
	Resolver command.EffectResolver
	// Seed drives shuffle order generation.
	Seed int64
	// Logger defaults to the package default logger.
	Logger *log.Logger
	// Clock defaults to the real clock; injectable for tests.
	Clock quartz.Clock
}

// Engine holds the canonical event log and everything derived from it.
// The log is the only ground truth; the projected state is a memo,
// invalidated on any log mutation and lazily recomputed.
type Engine struct {
	events  []event.Event
	memo    *game.State
	gen     *event.Generator
	subs    []Subscriber
	pending *UndoRequest

	handler  *command.Handler
	resolver command.EffectResolver
	seed     int64
	logger   *log.Logger
	clock    quartz.Clock
}

// New creates an engine with an empty log.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Engine{
		gen:      event.NewGenerator(),
		handler:  command.NewHandler(cfg.Resolver, randutil.New(cfg.Seed)),
		resolver: cfg.Resolver,
		seed:     cfg.Seed,
		logger:   logger.WithPrefix("engine"),
		clock:    clock,
	}
}

// Dispatch validates and executes a command for the given actor. On
// success the resulting events are assigned ids, appended, and
// subscribers are notified synchronously. On failure nothing changes.
// Undo protocol commands are routed to the consensus machinery.
func (e *Engine) Dispatch(cmd command.Command, actor string) error {
	switch cmd.Type {
	case command.TypeRequestUndo:
		return e.RequestUndo(cmd.Player, cmd.TargetID, cmd.Reason)
	case command.TypeApproveUndo:
		return e.ApproveUndo(cmd.Player, cmd.RequestID)
	case command.TypeDenyUndo:
		return e.DenyUndo(cmd.Player, cmd.RequestID)
	}

	batch, err := e.handler.Handle(e.State(), cmd, actor)
	if err != nil {
		e.logger.Debug("command rejected", "type", cmd.Type, "player", cmd.Player, "err", err)
		return err
	}
	newEvents := batch.Stamp(e.gen)
	e.events = append(e.events, newEvents...)
	e.memo = nil
	e.logger.Debug("command applied", "type", cmd.Type, "player", cmd.Player, "events", len(newEvents))
	e.notify(newEvents)
	return nil
}

// State returns the current projected state, recomputing it from the
// log if a mutation invalidated the memo. Callers must treat the result
// as read-only.
func (e *Engine) State() *game.State {
	if e.memo == nil {
		e.memo = game.Project(e.events)
	}
	return e.memo
}

// Events returns a copy of the event log.
func (e *Engine) Events() []event.Event {
	return append([]event.Event(nil), e.events...)
}

// Subscribe registers a callback for future log mutations.
func (e *Engine) Subscribe(fn Subscriber) {
	e.subs = append(e.subs, fn)
}

// Fork returns an independent copy of the engine: same log, same
// generator position, same pending undo arbitration, but no subscribers.
// Mutating the fork never affects the original, which makes it suitable
// for speculative what-if exploration.
func (e *Engine) Fork() *Engine {
	f := &Engine{
		events:   append([]event.Event(nil), e.events...),
		gen:      e.gen.Clone(),
		handler:  command.NewHandler(e.resolver, randutil.New(e.seed)),
		resolver: e.resolver,
		seed:     e.seed,
		logger:   e.logger,
		clock:    e.clock,
	}
	if e.pending != nil {
		f.pending = e.pending.clone()
	}
	return f
}

// StateAtEvent reconstructs the state for the log prefix ending at the
// given event id, inclusive. Unlike the causality primitives this fails
// for an unknown id, since a preview of a non-existent moment has no
// meaningful no-op.
func (e *Engine) StateAtEvent(id string) (*game.State, error) {
	for i, evt := range e.events {
		if evt.ID == id {
			return game.Project(e.events[:i+1]), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

// LoadEvents replaces the log with an externally-sourced one, assigns
// ids to any id-less events, resynchronizes the id generator and
// notifies subscribers. Used when a receiver establishes a fresh
// baseline (initial sync, or a full resync after an undo truncation).
func (e *Engine) LoadEvents(events []event.Event) {
	e.loadEvents(events, true)
}

// LoadEventsSilent is LoadEvents without subscriber notification, for
// resynchronization that happens as a side effect of another protocol
// step where downstream notification would be redundant.
func (e *Engine) LoadEventsSilent(events []event.Event) {
	e.loadEvents(events, false)
}

func (e *Engine) loadEvents(events []event.Event, notify bool) {
	replaced := append([]event.Event(nil), events...)
	e.gen.SyncPast(replaced)
	for i := range replaced {
		if replaced[i].ID == "" {
			replaced[i].ID = e.gen.Next()
		}
	}
	e.events = replaced
	e.memo = nil
	e.pending = nil
	e.logger.Debug("log replaced", "events", len(replaced))
	if notify {
		e.notify(replaced)
	}
}

// ApplyExternalEvents appends events received from an external source,
// assigning ids only where absent so replayed ids are preserved.
func (e *Engine) ApplyExternalEvents(events []event.Event) {
	applied := append([]event.Event(nil), events...)
	e.gen.SyncPast(applied)
	for i := range applied {
		if applied[i].ID == "" {
			applied[i].ID = e.gen.Next()
		}
	}
	e.events = append(e.events, applied...)
	e.memo = nil
	e.notify(applied)
}

// append stamps an id onto a single locally-generated protocol event
// and appends it without notifying; callers decide when to notify.
func (e *Engine) append(evt event.Event) event.Event {
	if evt.ID == "" {
		evt.ID = e.gen.Next()
	}
	e.events = append(e.events, evt)
	e.memo = nil
	return evt
}

func (e *Engine) notify(newEvents []event.Event) {
	st := e.State()
	for _, fn := range e.subs {
		fn(newEvents, st)
	}
}
