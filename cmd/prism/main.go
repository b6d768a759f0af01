// Command prism is a polyglot code indexer: it parses source files with
// Tree-sitter, extracts symbols, chunks the content, and keeps a local
// SQLite index that can be searched, watched, and browsed.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"prism/internal/config"
	"prism/internal/logging"
	"prism/internal/store"
)

var version = "0.2.0"

var (
	// Global flags
	verbose   bool
	workspace string
	dbPath    string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "prism - polyglot code indexer",
	Long: `prism parses source code with Tree-sitter, extracts functions,
classes, and imports, slices files into token-budgeted chunks, and keeps
a local SQLite index.

Supported languages: typescript, javascript, python, rust, go, java.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}
		}
		workspace, err = filepath.Abs(workspace)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("debug logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the prism version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prism %s\n", version)
	},
}

// loadConfig loads workspace config, honoring the --db flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Store.DatabasePath = dbPath
	}
	return cfg, nil
}

// openStore loads config and opens the index database.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(cfg.Store.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "index database path (default: <workspace>/.prism/index.db)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
