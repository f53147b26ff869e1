package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/goldlog"
	"github.com/google/subcommands"
)

type addCmd struct {
	date     string
	price    string
	quantity string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new purchase" }
func (*addCmd) Usage() string {
	return `gold add -date <date> -price <price> -quantity <quantity>

  Records a purchase and saves the whole list. The three values are required
  and kept as typed. The new purchase id is printed on success.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "Purchase date, e.g. 24.05.2025")
	f.StringVar(&c.price, "price", "", "Unit price (TL per gram)")
	f.StringVar(&c.quantity, "quantity", "", "Quantity in grams")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	form := goldlog.NewForm(a.store, a.notify, nil)
	form.UpdateField(goldlog.FieldDate, c.date)
	form.UpdateField(goldlog.FieldPrice, c.price)
	form.UpdateField(goldlog.FieldQuantity, c.quantity)

	if err := a.wait(ctx); err != nil {
		fmt.Fprintf(stderr, "Error loading purchases: %v\n", err)
		return subcommands.ExitFailure
	}

	p, err := form.Submit(ctx)
	if err != nil && !errors.Is(err, goldlog.ErrPersistence) {
		// already notified.
		return exitStatus(err)
	}
	fmt.Fprintln(stdout, p.ID)
	return exitStatus(err)
}
