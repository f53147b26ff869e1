package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/goldlog/renderer"
	"github.com/google/subcommands"
)

type listCmd struct {
	head int
	tail int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list recorded purchases" }
func (*listCmd) Usage() string {
	return `gold list [-head <n>] [-tail <n>]

  Lists recorded purchases, in the order they were entered.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N purchases.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N purchases.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.wait(ctx); err != nil {
		fmt.Fprintf(stderr, "Error loading purchases: %v\n", err)
		return subcommands.ExitFailure
	}

	purchases := a.store.Purchases()
	if c.head > 0 && len(purchases) > c.head {
		purchases = purchases[:c.head]
	}
	if c.tail > 0 && len(purchases) > c.tail {
		purchases = purchases[len(purchases)-c.tail:]
	}

	printMarkdown(renderer.RenderPurchases(purchases))
	return subcommands.ExitSuccess
}
