package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/goldlog"
	"github.com/etnz/goldlog/renderer"
	"github.com/google/subcommands"
)

var prompts = map[goldlog.Field]string{
	goldlog.FieldDate:     "Date (e.g. 24.05.2025)",
	goldlog.FieldPrice:    "Price (TL/g)",
	goldlog.FieldQuantity: "Quantity (g)",
}

type enterCmd struct {
	noList bool
}

func (*enterCmd) Name() string     { return "enter" }
func (*enterCmd) Synopsis() string { return "record purchases interactively" }
func (*enterCmd) Usage() string {
	return `gold enter [-no-list]

  Prompts for the date, price and quantity of a purchase, records it, and
  starts over until the input ends (Ctrl-D). When a value is missing only the
  missing values are asked again. The list is printed at the end.
`
}

func (c *enterCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noList, "no-list", false, "Do not print the list at the end.")
}

func (c *enterCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	// the form is not usable until the list is loaded.
	select {
	case <-a.store.Ready():
	default:
		fmt.Fprintln(stderr, "Loading purchases...")
	}
	if err := a.wait(ctx); err != nil {
		fmt.Fprintf(stderr, "Error loading purchases: %v\n", err)
		return subcommands.ExitFailure
	}

	form := goldlog.NewForm(a.store, a.notify, nil)
	scanner := bufio.NewScanner(stdin)
	ask := goldlog.Fields
	added := 0
	for {
		for _, field := range ask {
			fmt.Fprintf(stdout, "%s: ", prompts[field])
			if !scanner.Scan() {
				fmt.Fprintln(stdout)
				return c.done(a, added, scanner.Err())
			}
			form.UpdateField(field, scanner.Text())
		}

		_, err := form.Submit(ctx)
		var verr *goldlog.ValidationError
		switch {
		case errors.As(err, &verr):
			ask = verr.Missing
			continue
		case err != nil && !errors.Is(err, goldlog.ErrPersistence):
			return exitStatus(err)
		}
		added++
		ask = goldlog.Fields
	}
}

func (c *enterCmd) done(a *app, added int, err error) subcommands.ExitStatus {
	if err != nil {
		fmt.Fprintf(stderr, "Error reading input: %v\n", err)
		return subcommands.ExitFailure
	}
	a.log.WithField("added", added).Debug("session ended")
	if !c.noList {
		printMarkdown(renderer.RenderPurchases(a.store.Purchases()))
	}
	return subcommands.ExitSuccess
}
