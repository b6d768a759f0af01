package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prism/internal/index"
)

var watchMode bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index the workspace (or a single path)",
	Long: `Scan the workspace for supported source files, parse and chunk
them, and persist the result to the index database. Unchanged files are
skipped. With --watch, keep running and re-index files as they change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ix := index.New(workspace, cfg, st)

		if len(args) == 1 {
			if err := ix.IndexFile(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("indexed %s\n", args[0])
			return nil
		}

		result, err := ix.IndexWorkspace(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d files (%d chunks), %d unchanged, %d failed\n",
			result.FilesIndexed, result.Chunks, result.FilesSkipped, len(result.Failed))
		for _, path := range result.Failed {
			logger.Warn("indexing failed", zap.String("path", path))
		}

		if !watchMode {
			return nil
		}

		watcher, err := index.NewWatcher(ix)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watcher.Close()

		fmt.Println("watching for changes (ctrl-c to stop)")
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&watchMode, "watch", false, "keep watching the workspace for changes")
}
