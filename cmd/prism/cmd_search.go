package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prism/cmd/prism/ui"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed chunks by keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		query := strings.Join(args, " ")
		hits, err := st.Search(cmd.Context(), query, searchLimit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Printf("no matches for %q\n", query)
			return nil
		}

		styles := ui.DefaultStyles()
		table := ui.NewSimpleTable(fmt.Sprintf("%d matches for %q", len(hits), query),
			[]string{"File", "Lines", "Lang", "Snippet"})
		for _, h := range hits {
			table.AddRow(h.Path,
				fmt.Sprintf("%d-%d", h.StartLine, h.EndLine),
				h.Language,
				truncate(h.Snippet, 60))
		}
		fmt.Print(table.View(styles))
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")
}
