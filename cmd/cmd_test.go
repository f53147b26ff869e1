package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

// useStore points the global flags to a fresh storage folder and captures
// the command output. It returns stdout and stderr buffers.
func useStore(t *testing.T, url string) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if url == "" {
		url = "dir:" + filepath.Join(t.TempDir(), ".goldlog")
	}
	oldURL, oldPlain, oldRetries := *storeURL, *plain, *retries
	oldIn, oldOut, oldErr := stdin, stdout, stderr

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	*storeURL, *plain, *retries = url, true, 0
	stdout, stderr = out, errOut

	t.Cleanup(func() {
		*storeURL, *plain, *retries = oldURL, oldPlain, oldRetries
		stdin, stdout, stderr = oldIn, oldOut, oldErr
	})
	return out, errOut
}

// execute runs c with args as its command line.
func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parsing %q: %v", args, err)
	}
	return c.Execute(context.Background(), f)
}

func TestAddAndList(t *testing.T) {
	out, errOut := useStore(t, "")

	status := execute(t, &addCmd{}, "-date", "24.05.2025", "-price", "2450", "-quantity", "10")
	if status != subcommands.ExitSuccess {
		t.Fatalf("add: got %v, want ExitSuccess. stderr:\n%s", status, errOut)
	}
	if id := strings.TrimSpace(out.String()); id == "" {
		t.Errorf("add printed no id")
	}
	if !strings.Contains(errOut.String(), "Purchase added!") {
		t.Errorf("add did not notify success, stderr:\n%s", errOut)
	}

	execute(t, &addCmd{}, "-date", "01.06.2025", "-price", "2500", "-quantity", "5")

	out.Reset()
	if status := execute(t, &listCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("list: got %v, want ExitSuccess", status)
	}
	want := `# Recorded purchases

| # | Date | Price (TL/g) | Quantity (g) |
|--:|:-----|-------------:|-------------:|
| 1 | 24.05.2025 | 2450 | 10 |
| 2 | 01.06.2025 | 2500 | 5 |

_2 purchase(s)._
`
	if got := out.String(); got != want {
		t.Errorf("list output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}

	out.Reset()
	execute(t, &listCmd{}, "-tail", "1")
	if got := out.String(); strings.Contains(got, "24.05.2025") || !strings.Contains(got, "01.06.2025") {
		t.Errorf("list -tail 1 output:\n%s", got)
	}
}

func TestAddMissingValue(t *testing.T) {
	out, errOut := useStore(t, "")

	status := execute(t, &addCmd{}, "-date", "", "-price", "100", "-quantity", "5")
	if status != subcommands.ExitUsageError {
		t.Fatalf("add: got %v, want ExitUsageError", status)
	}
	if out.Len() != 0 {
		t.Errorf("add printed %q on a missing value", out)
	}
	if !strings.Contains(errOut.String(), "Please fill in all required fields.") {
		t.Errorf("add did not report the missing value, stderr:\n%s", errOut)
	}

	out.Reset()
	execute(t, &listCmd{})
	if !strings.Contains(out.String(), "No purchases recorded yet.") {
		t.Errorf("list output:\n%s", out)
	}
}

func TestAddSQLite(t *testing.T) {
	out, _ := useStore(t, "sqlite:"+filepath.Join(t.TempDir(), "gold.db"))
	if status := execute(t, &addCmd{}, "-date", "24.05.2025", "-price", "2450", "-quantity", "10"); status != subcommands.ExitSuccess {
		t.Fatalf("add: got %v", status)
	}
	out.Reset()
	execute(t, &listCmd{})
	if !strings.Contains(out.String(), "| 1 | 24.05.2025 | 2450 | 10 |") {
		t.Errorf("list output:\n%s", out)
	}
}

func TestAddUnreadableStorage(t *testing.T) {
	// a folder where the slot file should be makes every read fail.
	folder := t.TempDir()
	if err := os.Mkdir(filepath.Join(folder, "goldPurchases.json"), 0755); err != nil {
		t.Fatal(err)
	}
	_, errOut := useStore(t, "dir:"+folder)

	status := execute(t, &addCmd{}, "-date", "24.05.2025", "-price", "2450", "-quantity", "10")
	if status != subcommands.ExitFailure {
		t.Errorf("add: got %v, want ExitFailure as the purchase cannot be saved", status)
	}
	for _, msg := range []string{"Could not load saved purchases.", "Could not save purchases."} {
		if !strings.Contains(errOut.String(), msg) {
			t.Errorf("stderr is missing %q:\n%s", msg, errOut)
		}
	}
}

func TestListFlags(t *testing.T) {
	useStore(t, "")
	if status := execute(t, &listCmd{}, "-head", "1", "-tail", "1"); status != subcommands.ExitUsageError {
		t.Errorf("list -head -tail: got %v, want ExitUsageError", status)
	}
}

func TestInvalidStore(t *testing.T) {
	_, errOut := useStore(t, "ftp:somewhere")
	if status := execute(t, &listCmd{}); status != subcommands.ExitFailure {
		t.Errorf("list: got %v, want ExitFailure", status)
	}
	if !strings.Contains(errOut.String(), "unknown scheme") {
		t.Errorf("stderr:\n%s", errOut)
	}
}

func TestEnter(t *testing.T) {
	out, errOut := useStore(t, "")
	// the second purchase misses its quantity, which is asked again alone.
	stdin = strings.NewReader("24.05.2025\n2450\n10\n01.06.2025\n2500\n  \n5\n")

	if status := execute(t, &enterCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("enter: got %v, stderr:\n%s", status, errOut)
	}

	got := out.String()
	if n := strings.Count(got, "Quantity (g): "); n != 3 {
		t.Errorf("quantity asked %d times, want 3:\n%s", n, got)
	}
	if n := strings.Count(got, "Date (e.g. 24.05.2025): "); n != 3 {
		t.Errorf("date asked %d times, want 3 (two purchases and the end of input):\n%s", n, got)
	}
	for _, row := range []string{"| 1 | 24.05.2025 | 2450 | 10 |", "| 2 | 01.06.2025 | 2500 | 5 |"} {
		if !strings.Contains(got, row) {
			t.Errorf("final list is missing %q:\n%s", row, got)
		}
	}
	if n := strings.Count(errOut.String(), "Purchase added!"); n != 2 {
		t.Errorf("got %d success notifications, want 2:\n%s", n, errOut)
	}
}

func TestEnterNoList(t *testing.T) {
	out, _ := useStore(t, "memory:")
	stdin = strings.NewReader("")
	if status := execute(t, &enterCmd{}, "-no-list"); status != subcommands.ExitSuccess {
		t.Fatalf("enter: got %v", status)
	}
	if strings.Contains(out.String(), "Recorded purchases") {
		t.Errorf("enter -no-list printed the list:\n%s", out)
	}
}

func TestTopic(t *testing.T) {
	out, _ := useStore(t, "")
	if status := execute(t, &topicCmd{}, "storage"); status != subcommands.ExitSuccess {
		t.Fatalf("topic storage: got %v", status)
	}
	if !strings.HasPrefix(out.String(), "# Storage") {
		t.Errorf("topic storage output:\n%s", out)
	}

	out.Reset()
	execute(t, &topicCmd{}, "-list")
	if got := strings.Fields(out.String()); strings.Join(got, ",") != "purchases,storage" {
		t.Errorf("topic -list = %v", got)
	}

	if status := execute(t, &topicCmd{}, "nope"); status != subcommands.ExitUsageError {
		t.Errorf("topic nope: got %v, want ExitUsageError", status)
	}
}

func TestStoreLocation(t *testing.T) {
	useStore(t, "")
	*storeURL = ""
	t.Setenv(StoreEnv, "")
	if got := storeLocation(); got != DefaultStore {
		t.Errorf("storeLocation() = %q, want %q", got, DefaultStore)
	}
	t.Setenv(StoreEnv, "memory:")
	if got := storeLocation(); got != "memory:" {
		t.Errorf("storeLocation() = %q, want the environment value", got)
	}
	*storeURL = "sqlite:x.db"
	if got := storeLocation(); got != "sqlite:x.db" {
		t.Errorf("storeLocation() = %q, want the flag value", got)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(StoreEnv, "")
	os.Unsetenv(StoreEnv)

	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte(StoreEnv+"=sqlite:from-env.db\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnv(file, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv(StoreEnv); got != "sqlite:from-env.db" {
		t.Errorf("%s = %q after LoadEnv", StoreEnv, got)
	}
}

func TestCompletion(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("gold", flag.ContinueOnError), "gold")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	Register(commander)

	completion := Completion()
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		sub, ok := completion.Sub[c.Name()]
		if !ok {
			t.Errorf("command %q has no completion", c.Name())
			return
		}
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		f.VisitAll(func(fl *flag.Flag) {
			if _, ok := sub.Flags[fl.Name]; !ok {
				t.Errorf("flag -%s of %q has no completion", fl.Name, c.Name())
			}
		})
	})
	flag.CommandLine.VisitAll(func(fl *flag.Flag) {
		if _, ok := completion.Flags[fl.Name]; !ok && !strings.HasPrefix(fl.Name, "test.") {
			t.Errorf("global flag -%s has no completion", fl.Name)
		}
	})
}
