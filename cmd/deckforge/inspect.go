package main

import (
	"fmt"
	"strings"

	"github.com/lox/deckforge/internal/cards"
	"github.com/lox/deckforge/internal/engine"
	"github.com/lox/deckforge/internal/event"
	"github.com/lox/deckforge/internal/history"
)

type InspectCmd struct {
	Path   string `arg:"" help:"Path to a recorded event log (.json or .json.gz)"`
	At     string `help:"Show the projected state as of this event id"`
	Chain  string `help:"Show the causal chain of this event id"`
	Rewind string `help:"Preview the log retained after rewinding to this event id"`
}

func (c *InspectCmd) Run(cli *CLI) error {
	events, err := history.Load(c.Path)
	if err != nil {
		return err
	}

	if c.Chain != "" {
		return printChain(c.Chain, events)
	}
	if c.Rewind != "" {
		return printRewind(c.Rewind, events)
	}
	if c.At != "" {
		return printStateAt(c.At, events, cli)
	}

	for i, evt := range events {
		fmt.Printf("%4d  %-6s %-20s %s\n", i, evt.ID, evt.Type, describe(evt))
	}
	return nil
}

func printChain(id string, events []event.Event) error {
	chain := event.CausalChain(id, events)
	if !chain[id] {
		return fmt.Errorf("event %s not found", id)
	}
	for _, evt := range events {
		if chain[evt.ID] {
			fmt.Printf("%-6s %-20s %s\n", evt.ID, evt.Type, describe(evt))
		}
	}
	return nil
}

func printRewind(id string, events []event.Event) error {
	found := false
	for _, evt := range events {
		if evt.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("event %s not found", id)
	}
	retained := event.RemoveChain(id, events)
	fmt.Printf("Rewinding to %s retains %d of %d events:\n\n", id, len(retained), len(events))
	for i, evt := range retained {
		fmt.Printf("%4d  %-6s %-20s %s\n", i, evt.ID, evt.Type, describe(evt))
	}
	return nil
}

func printStateAt(id string, events []event.Event, cli *CLI) error {
	eng := engine.New(engine.Config{
		Resolver: cards.NewBasicSet(),
		Logger:   newLogger(cli),
	})
	eng.LoadEventsSilent(events)

	st, err := eng.StateAtEvent(id)
	if err != nil {
		return err
	}

	fmt.Printf("State as of %s: turn %d, %s phase, %s to act\n", id, st.Turn, st.Phase, st.Current)
	for _, p := range st.Order {
		ps := st.Player(p)
		fmt.Printf("  %-12s hand=%-2d deck=%-2d discard=%-2d score=%d\n",
			p, len(ps.Hand), len(ps.Deck), len(ps.Discard), cards.Score(st, p))
	}
	if prompt := st.ActivePrompt(); prompt != nil {
		fmt.Printf("  waiting on %s from %s\n", prompt.Name, prompt.Player)
	}
	return nil
}

// describe renders the interesting fields of an event on one line.
func describe(evt event.Event) string {
	parts := []string{}
	if evt.Player != "" {
		parts = append(parts, evt.Player)
	}
	if evt.Card != "" {
		parts = append(parts, evt.Card)
	}
	if len(evt.Cards) > 0 {
		parts = append(parts, strings.Join(evt.Cards, ","))
	}
	if evt.From != "" || evt.To != "" {
		parts = append(parts, fmt.Sprintf("%s->%s", evt.From, evt.To))
	}
	if evt.Resource != "" {
		parts = append(parts, fmt.Sprintf("%s%+d", evt.Resource, evt.Amount))
	}
	if evt.Prompt != "" {
		parts = append(parts, evt.Prompt)
	}
	if evt.Phase != "" {
		parts = append(parts, evt.Phase)
	}
	if evt.Turn > 0 {
		parts = append(parts, fmt.Sprintf("turn %d", evt.Turn))
	}
	if evt.TargetID != "" {
		parts = append(parts, "target "+evt.TargetID)
	}
	if evt.CausedBy != "" {
		parts = append(parts, "<- "+evt.CausedBy)
	}
	return strings.Join(parts, "  ")
}
