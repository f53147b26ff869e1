package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/goldlog/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `gold topic [-list] [<topic>...]

  Shows documentation topics, the readme when none is given. Use "*" for all
  topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List topic names.")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		topics, err := docs.GetAllTopics()
		if err != nil {
			fmt.Fprintf(stderr, "Error listing topics: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, strings.Join(topics, "\n"))
		return subcommands.ExitSuccess
	}

	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading doc: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
