// Command chordrack runs the live keyboard-driven instrument engine
// described by a config script passed on the command line.
package main

import (
	"fmt"
	"os"

	"chordrack/internal/engine"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

// version is set by tagged release builds; left at "dev" otherwise.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("chordrack", pflag.ContinueOnError)

	var verbosity int
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	showVersion := flags.BoolP("version", "V", false, "print version and exit")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "chordrack - live keyboard-driven instrument engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n  %s start <config.lua> [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Println("chordrack", version)
		return 0
	}

	rest := flags.Args()
	if len(rest) < 1 || rest[0] != "start" {
		flags.Usage()
		return 1
	}
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "chordrack: start requires exactly one config path argument")
		return 1
	}
	configPath := rest[1]

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	logger.SetLevel(levelFor(verbosity))

	e, err := engine.New(configPath, logger)
	if err != nil {
		logger.Error("initialization failed", "err", err)
		return 1
	}
	defer e.Close()

	if err := e.Run(); err != nil {
		logger.Error("run failed", "err", err)
		return 1
	}
	return 0
}

func levelFor(verbosity int) log.Level {
	switch {
	case verbosity >= 2:
		return log.DebugLevel
	case verbosity == 1:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}
