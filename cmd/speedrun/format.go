package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/persistorai/speedrun/internal/models"
	"github.com/persistorai/speedrun/internal/search"
)

// printResult writes result to out in the given format.
func printResult(out io.Writer, format string, result *models.SearchResult) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		return nil
	case formatList:
		for i, title := range result.Titles {
			fmt.Fprintf(out, "%d. %s\n", i+1, title)
		}

		return nil
	default:
		fmt.Fprintln(out, search.Render(result.Titles))
		fmt.Fprintf(out, "%s, %d articles visited in %s\n",
			plural(result.Hops, "hop"), result.SourceVisited+result.DestVisited, result.Elapsed.Round(time.Millisecond))

		return nil
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
