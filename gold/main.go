package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/goldlog/cmd"
	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	// answers shell completion requests (COMP_LINE) and exits, does nothing otherwise.
	cmd.Completion().Complete(name)

	if err := cmd.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitFailure))
	}

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
