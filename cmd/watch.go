package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toudaivocadou/vocadou/internal/build"
	"github.com/toudaivocadou/vocadou/internal/config"
	"github.com/toudaivocadou/vocadou/internal/logging"
	"github.com/toudaivocadou/vocadou/internal/watcher"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Rebuild the site whenever the content tree changes",
		Long: `Build once, then rebuild after every burst of changes to content files,
styles, scripts or media. A failed build is reported and the previous output
is left in place; watching continues.

Examples:
  vocadou watch
  vocadou watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// bound here because watch and serve share keys
			bindFlags(v, cmd.Flags(), map[string]string{"debounce": config.KeyWatchDebounce})
			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			if err := ensureOutputDir(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := newBuilder(cfg, logger, false)
			return watchAndRebuild(ctx, cfg, b, logger, printBuild(cmd.OutOrStdout(), cfg))
		},
	}

	cmd.Flags().Duration("debounce", 0, "quiet period before a rebuild (default 300ms)")
	return cmd
}

// buildReport is called after every build with its id and outcome.
type buildReport func(id int, res *build.Result, err error)

func printBuild(w io.Writer, cfg *config.Config) buildReport {
	return func(id int, res *build.Result, err error) {
		if err != nil {
			fmt.Fprintf(w, "[%s] build %d failed: %v\n", time.Now().Format("15:04:05"), id, err)
			return
		}
		fmt.Fprintf(w, "[%s] build %d: %d pages into %s\n", time.Now().Format("15:04:05"), id, len(res.Pages), cfg.OutputDir)
	}
}

// watchAndRebuild builds once and then after every batch of changes
// below the data root, until ctx is cancelled. Builds never overlap.
func watchAndRebuild(ctx context.Context, cfg *config.Config, b *build.Builder, logger logging.Logger, report buildReport) error {
	rebuild := func(ctx context.Context) {
		res, err := b.Build(ctx)
		if ctx.Err() != nil {
			return
		}
		report(b.Metrics().Snapshot().LastBuildID, res, err)
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.ContentFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.IgnoreDir(cfg.OutputDir)
	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, e := range events {
			logger.Debug(ctx, "File changed", "path", e.Path, "type", e.Type.String())
		}
		logger.Info(ctx, "Content changed, rebuilding", "files", len(events))
		rebuild(ctx)
		return nil
	})

	if err := fw.AddRecursive(cfg.DataRoot); err != nil {
		return err
	}

	rebuild(ctx)

	if err := fw.Start(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "Watching for changes", "root", cfg.DataRoot)

	<-ctx.Done()
	logger.Info(context.Background(), "Stopping watcher")
	return nil
}
