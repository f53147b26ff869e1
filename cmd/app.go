// Package cmd implements the CLI application to record purchases.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/goldlog"
	"github.com/etnz/goldlog/kv"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "purchases")
	c.Register(&listCmd{}, "purchases")
	c.Register(&enterCmd{}, "purchases")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// StoreEnv is the environment variable holding the default storage url.
const StoreEnv = "GOLDLOG_STORE"

// DefaultStore is used when neither -store nor $GOLDLOG_STORE is set.
const DefaultStore = "dir:.goldlog"

var storeURL = flag.String("store", "", "Storage url: dir:<folder>, sqlite:<file> or memory:. Defaults to $"+StoreEnv+" or "+DefaultStore)
var retries = flag.Uint64("retries", 2, "How many times a failed save is retried")
var verbose = flag.Bool("v", false, "Log debug traces")
var plain = flag.Bool("plain", false, "Print markdown as is instead of rendering it for the terminal")

// stdin and stdout can be replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// LoadEnv loads environment variables from the given .env files (".env" by
// default). Missing files are ignored, variables already set are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s file: %w", file, err)
		}
	}
	return nil
}

// storeLocation resolves the storage url from the flag, the environment, or the default.
func storeLocation() string {
	if *storeURL != "" {
		return *storeURL
	}
	if env := os.Getenv(StoreEnv); env != "" {
		return env
	}
	return DefaultStore
}

// newLogger returns the logger notifications and traces are written to.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// app bundles what a command needs to work on purchases.
type app struct {
	log    *logrus.Logger
	notify goldlog.Notifier
	store  *goldlog.Store
	closer io.Closer
	loaded <-chan error
}

// openApp opens the configured storage and starts loading purchases.
//
// The returned app must be closed.
func openApp(ctx context.Context) (*app, error) {
	log := newLogger()
	location := storeLocation()
	slot, closer, err := kv.Open(location)
	if err != nil {
		return nil, err
	}
	log.WithField("store", location).Debug("storage opened")

	notify := goldlog.LogNotifier{Logger: log}
	st := goldlog.NewStore(slot,
		goldlog.WithNotifier(notify),
		goldlog.WithLogger(log),
		goldlog.WithRetries(*retries),
	)
	return &app{
		log:    log,
		notify: notify,
		store:  st,
		closer: closer,
		loaded: st.Load(ctx),
	}, nil
}

// wait blocks until the purchases are loaded. Load failures have already been
// notified and are not fatal: the app goes on with an empty list.
func (a *app) wait(ctx context.Context) error {
	select {
	case <-a.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *app) Close() error {
	return a.closer.Close()
}

// printMarkdown renders md for the terminal, or prints it as is with -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// exitStatus maps an error to the command exit status.
func exitStatus(err error) subcommands.ExitStatus {
	switch {
	case err == nil:
		return subcommands.ExitSuccess
	case errors.Is(err, goldlog.ErrValidation):
		return subcommands.ExitUsageError
	default:
		return subcommands.ExitFailure
	}
}
