package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Verbose bool             `help:"Verbose logging"`

	Simulate SimulateCmd `cmd:"" help:"Run seeded self-play simulations"`
	Replay   ReplayCmd   `cmd:"" help:"Replay a recorded event log and show the outcome"`
	Inspect  InspectCmd  `cmd:"" help:"Inspect the events and causality of a recorded log"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("deckforge"),
		kong.Description("Event-sourced deck-building game engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// newLogger builds the command logger after flags have been parsed.
func newLogger(cli *CLI) *log.Logger {
	logger := log.New(os.Stderr)
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
