package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toudaivocadou/vocadou/internal/build"
	"github.com/toudaivocadou/vocadou/internal/config"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/logging"
)

func newBuildCmd(v *viper.Viper) *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b"},
		Short:   "Build the site",
		Long: `Load and check the content tree, render every page and write the site,
works_list.json, sitemap.xml and robots.txt into the output directory.

Nothing is written unless every record validates and every page renders.

Examples:
  vocadou build                          # Build into ./dist
  vocadou build -b 42 -o public          # Log as build 42, write into ./public
  vocadou build --clean                  # Remove stale files first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			if err := ensureOutputDir(cfg); err != nil {
				return err
			}
			res, err := newBuilder(cfg, logger, clean).Build(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d assets from %d records into %s (build %d, %s)\n",
				len(res.Pages), res.Assets, res.Records, cfg.OutputDir, res.BuildID, res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "remove everything in the output directory before writing")
	return cmd
}

// newBuilder creates a Builder reading from the data root and writing to
// the output directory. The content tree is opened read-only.
func newBuilder(cfg *config.Config, logger logging.Logger, clean bool) *build.Builder {
	osFs := afero.NewOsFs()
	src := afero.NewReadOnlyFs(afero.NewBasePathFs(osFs, cfg.DataRoot))
	out := afero.NewBasePathFs(osFs, cfg.OutputDir)

	return build.New(src, out, build.Options{
		BuildID:         cfg.BuildID,
		DataRoot:        cfg.DataRoot,
		SiteURL:         cfg.SiteURL,
		ExternalURLRoot: cfg.ExternalURLRoot,
		Workers:         cfg.Render.Workers,
		Clean:           clean,
		EmbedEnabled:    cfg.Embed.Enabled,
		EmbedTimeout:    cfg.Embed.Timeout,
		EmbedEndpoint:   cfg.Embed.Endpoint,
	}, logger)
}

func ensureOutputDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return siteerrors.WrapIO(err, siteerrors.ErrCodeFileWrite, cfg.OutputDir, "failed to create output directory")
	}
	return nil
}
