// Package cmd is the vocadou command line.
//
// Configuration is resolved from, highest priority first:
//
//  1. command-line flags (--site-url, --output, ...)
//  2. VOCADOU_* environment variables (VOCADOU_SITE_URL, VOCADOU_EMBED_ENABLED, ...)
//  3. the config file: --config, then VOCADOU_CONFIG_FILE, then .vocadou.yml
//  4. built-in defaults
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toudaivocadou/vocadou/internal/config"
	"github.com/toudaivocadou/vocadou/internal/logging"
)

// Execute runs the command line with the process arguments.
func Execute() error {
	return NewRootCommand(viper.New()).Execute()
}

// NewRootCommand builds the command tree. Every command reads its
// configuration from v.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "vocadou",
		Short: "Build the 東京大学ボカロP同好会 homepage",
		Long: `vocadou turns the club's content tree (members, works, posts and albums
written as TOML front matter plus Markdown) into the static homepage.

Every handle, asset path and work reference is checked before anything is
written, so a broken content tree never produces a half-updated site.

Quick Start:
  vocadou check                   Validate the content tree
  vocadou build                   Build the site into ./dist
  vocadou serve                   Rebuild on change and preview with live reload
  vocadou list works              List the works in the content tree`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .vocadou.yml, can also use VOCADOU_CONFIG_FILE env var)")
	pf.IntP("build-id", "b", 0, "build number logged with every message")
	pf.StringP("data-root", "d", "", "content tree to build (default \".\")")
	pf.StringP("output", "o", "", "directory the site is written to (default \"dist\")")
	pf.StringP("site-url", "s", "", "absolute URL the site is published at")
	pf.StringP("external-url-root", "e", "", "URL root large media is served from")
	pf.StringP("log-level", "l", "", "log level: debug, info, warn, error (default \"info\")")
	pf.String("log-format", "", "log format: text, json (default \"text\")")

	bindFlags(v, pf, map[string]string{
		"build-id":          config.KeyBuildID,
		"data-root":         config.KeyDataRoot,
		"output":            config.KeyOutputDir,
		"site-url":          config.KeySiteURL,
		"external-url-root": config.KeyExternalURLRoot,
		"log-level":         config.KeyLogLevel,
		"log-format":        config.KeyLogFormat,
	})

	rootCmd.AddCommand(
		newBuildCmd(v),
		newCheckCmd(v),
		newWatchCmd(v),
		newServeCmd(v),
		newListCmd(v),
		newConfigCmd(v),
		newVersionCmd(),
	)
	return rootCmd
}

// bindFlags binds each flag to its configuration key. Only flags the user
// sets override the other sources.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) {
	for name, key := range bindings {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// initConfig points v at the config file and the VOCADOU_ environment.
// A missing default config file is not an error; a named one is.
func initConfig(v *viper.Viper, cfgFile string) error {
	named := true
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		v.SetConfigFile(envConfigFile)
	} else {
		named = false
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".vocadou")
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if named || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// loadConfig resolves the configuration and creates the logger for one
// command run. Configuration warnings are logged, not returned.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, logging.Logger, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	ctx := cmd.Context()
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug(ctx, "Using config file", "path", used)
	}
	for _, w := range config.Warnings(cfg) {
		logger.Warn(ctx, nil, w)
	}
	return cfg, logger, nil
}
