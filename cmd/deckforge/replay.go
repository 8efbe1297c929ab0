package main

import (
	"fmt"
	"sort"

	"github.com/lox/deckforge/internal/cards"
	"github.com/lox/deckforge/internal/engine"
	"github.com/lox/deckforge/internal/history"
)

type ReplayCmd struct {
	Path string `arg:"" help:"Path to a recorded event log (.json or .json.gz)"`
}

func (c *ReplayCmd) Run(cli *CLI) error {
	events, err := history.Load(c.Path)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Resolver: cards.NewBasicSet(),
		Logger:   newLogger(cli),
	})
	eng.LoadEventsSilent(events)

	st := eng.State()
	if !st.Started {
		return fmt.Errorf("%s does not contain a started game", c.Path)
	}

	status := "in progress"
	if st.Over {
		status = "finished"
	}
	fmt.Printf("Replayed %d events: turn %d, %s phase, %s\n",
		len(events), st.Turn, st.Phase, status)

	type line struct {
		player string
		score  int
	}
	lines := make([]line, 0, len(st.Order))
	for _, p := range st.Order {
		lines = append(lines, line{p, cards.Score(st, p)})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].score > lines[j].score })

	fmt.Println("\nScores:")
	for _, l := range lines {
		marker := " "
		if l.player == st.Current {
			marker = "*"
		}
		fmt.Printf("%s %-12s %d\n", marker, l.player, l.score)
	}
	return nil
}
