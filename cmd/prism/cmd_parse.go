package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prism/internal/parse"
)

var parseLang string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one file and print the structured result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		lang := parse.Language(parseLang)
		if parseLang == "" {
			lang, err = parse.LanguageForFile(path)
			if err != nil {
				return err
			}
		}

		parser, err := parse.NewParser(lang)
		if err != nil {
			return err
		}
		defer parser.Close()

		result, err := parser.Parse(cmd.Context(), content)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and extensions",
	Run: func(cmd *cobra.Command, args []string) {
		for _, lang := range parse.SupportedLanguages() {
			fmt.Println(lang)
		}
		fmt.Printf("extensions: %v\n", parse.SupportedExtensions())
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseLang, "language", "l", "", "override language detection")
}
