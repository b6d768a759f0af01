package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"prism/cmd/prism/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if stats.Files == 0 {
			fmt.Println("index is empty; run `prism index` first")
			return nil
		}

		langs := make([]string, 0, len(stats.ByLanguage))
		for lang := range stats.ByLanguage {
			langs = append(langs, lang)
		}
		sort.Strings(langs)

		styles := ui.DefaultStyles()
		table := ui.NewSimpleTable("Index statistics", []string{"Language", "Files", "Chunks", "Symbols"})
		for _, lang := range langs {
			ls := stats.ByLanguage[lang]
			table.AddRow(lang,
				fmt.Sprintf("%d", ls.Files),
				fmt.Sprintf("%d", ls.Chunks),
				fmt.Sprintf("%d", ls.Symbols))
		}
		table.AddRow("total",
			fmt.Sprintf("%d", stats.Files),
			fmt.Sprintf("%d", stats.Chunks),
			fmt.Sprintf("%d", stats.Symbols))
		fmt.Print(table.View(styles))
		return nil
	},
}
