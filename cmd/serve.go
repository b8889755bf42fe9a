package cmd

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/toudaivocadou/vocadou/internal/build"
	"github.com/toudaivocadou/vocadou/internal/config"
	"github.com/toudaivocadou/vocadou/internal/livereload"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s", "preview"},
		Short:   "Preview the site with live reload",
		Long: `Watch the content tree like "vocadou watch" and serve the output directory
over HTTP. Open pages reload after every successful build; failed builds are
reported in the browser console and the last good site stays up.

Examples:
  vocadou serve                     # http://localhost:8080/
  vocadou serve --port 3000
  vocadou serve --host 0.0.0.0      # reachable from other devices`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// bound here because watch and serve share keys
			bindFlags(v, cmd.Flags(), map[string]string{
				"host":     config.KeyServeHost,
				"port":     config.KeyServePort,
				"debounce": config.KeyWatchDebounce,
			})
			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			if err := ensureOutputDir(cfg); err != nil {
				return err
			}
			if applyPreviewSiteURL(cmd, v, cfg) {
				logger.Debug(cmd.Context(), "Linking pages to the preview server", "site_url", cfg.SiteURL)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := livereload.NewHub(nil, logger)
			server := livereload.NewServer(cfg.Serve.Address(), afero.NewBasePathFs(afero.NewOsFs(), cfg.OutputDir), hub, logger)

			printer := printBuild(cmd.OutOrStdout(), cfg)
			report := func(id int, res *build.Result, err error) {
				printer(id, res, err)
				if err != nil {
					hub.Broadcast(livereload.Message{Type: livereload.TypeError, BuildID: id, Error: err.Error()})
					return
				}
				hub.Broadcast(livereload.Message{Type: livereload.TypeReload, BuildID: id})
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.ListenAndServe(gctx)
			})
			g.Go(func() error {
				return watchAndRebuild(gctx, cfg, newBuilder(cfg, logger, false), logger, report)
			})
			return g.Wait()
		},
	}

	cmd.Flags().String("host", "", "address to listen on (default \"localhost\")")
	cmd.Flags().IntP("port", "p", 0, "port to listen on (default 8080)")
	cmd.Flags().Duration("debounce", 0, "quiet period before a rebuild (default 300ms)")
	return cmd
}

// applyPreviewSiteURL points cfg at the preview server unless site_url
// was set explicitly, and reports whether it did.
func applyPreviewSiteURL(cmd *cobra.Command, v *viper.Viper, cfg *config.Config) bool {
	if siteURLSet(cmd, v) {
		return false
	}
	cfg.SiteURL = previewSiteURL(cfg.Serve)
	return true
}

// siteURLSet reports whether site_url was given by flag, environment or
// config file rather than taken from the defaults.
func siteURLSet(cmd *cobra.Command, v *viper.Viper) bool {
	if f := cmd.Flag("site-url"); f != nil && f.Changed {
		return true
	}
	if _, ok := os.LookupEnv(config.EnvPrefix + "_SITE_URL"); ok {
		return true
	}
	return v.InConfig(config.KeySiteURL)
}

// previewSiteURL is the origin the preview server is reached at, so that
// rewritten links stay on it.
func previewSiteURL(s config.ServeConfig) string {
	host := s.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(s.Port)) + "/"
}
