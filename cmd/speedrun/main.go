// Command speedrun finds the shortest chain of links between two Wikipedia
// articles stored in PostgreSQL, and can serve the same search over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/persistorai/speedrun/internal/config"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatList = "list"
	formatJSON = "json"
)

// usageError marks a command-line mistake; the usage text is printed with it.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// execute runs the command tree and maps the outcome to a process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return exitOK
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return exitUsage
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "speedrun <source> <destination>",
		Short: "Find the shortest link path between two Wikipedia articles",
		Long: "speedrun runs a bidirectional breadth-first search over the article link graph\n" +
			"and prints the shortest chain of articles leading from source to destination.",
		Example: `  speedrun "Fish" "Ocean"
  speedrun --format json "Kevin Bacon" "Ada Lovelace"`,
		Version:       config.Version,
		Args:          titleArgs,
		RunE:          runSearchCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("speedrun version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.String("database-url", "", "PostgreSQL connection URL (env: DATABASE_URL)")
	pf.String("log-level", "", "Log level: trace|debug|info|warn|error (env: LOG_LEVEL)")
	pf.String("log-format", "", "Log format: text|json (env: LOG_FORMAT)")
	pf.Int("workers", 0, "Concurrent neighbor queries per layer (env: SEARCH_WORKERS)")
	pf.Int("batch-size", 0, "Node ids per neighbor query (env: SEARCH_BATCH_SIZE)")
	pf.Int("max-hops", 0, "Give up beyond this many hops, 0 for no limit (env: SEARCH_MAX_HOPS)")
	pf.Int("max-visited", 0, "Give up after visiting this many articles, 0 for no limit (env: SEARCH_MAX_VISITED)")

	root.Flags().String("format", formatText, "Output format: text|list|json")
	root.Flags().String("server", "", "Search through a running speedrun server instead of the database (env: SPEEDRUN_SERVER)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

// titleArgs accepts exactly a source and a destination title.
func titleArgs(_ *cobra.Command, args []string) error {
	if len(args) != 2 {
		return usageErrorf("expected a source and a destination title, got %d argument(s)", len(args))
	}

	return nil
}

// noArgs rejects positional arguments on subcommands.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return usageErrorf("%s takes no arguments, got %q", cmd.Name(), args)
	}

	return nil
}
