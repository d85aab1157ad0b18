package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/persistorai/speedrun/client"
	"github.com/persistorai/speedrun/internal/domain"
)

func runSearchCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	if format != formatText && format != formatList && format != formatJSON {
		return usageErrorf("unknown format %q (want text, list, or json)", format)
	}

	lookup, err := settings(cmd)
	if err != nil {
		return err
	}

	if server := lookup(serverKey); server != "" {
		return runSearch(cmd.Context(), cmd.OutOrStdout(), client.New(server), format, args[0], args[1])
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log := newLogger(cfg, cmd.ErrOrStderr())

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	return runSearch(cmd.Context(), cmd.OutOrStdout(), a.paths, format, args[0], args[1])
}

const header = "Wikipedia Speedrun Computer"

// runSearch prints the header and banner (text format only), finds the path, and prints it.
func runSearch(ctx context.Context, out io.Writer, paths domain.PathFinder, format, from, to string) error {
	if format == formatText {
		fmt.Fprintln(out, header)
		fmt.Fprintf(out, "[%s] → [%s]\n", strings.TrimSpace(from), strings.TrimSpace(to))
	}

	result, err := paths.FindPath(ctx, from, to)
	if err != nil {
		return err
	}

	return printResult(out, format, result)
}
