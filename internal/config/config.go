// Package config loads the builder's configuration using Viper from
// configuration files, VOCADOU_ environment variables and command-line
// flags, in that order of increasing priority.
//
// The resolved Config is passed explicitly to every stage that needs it.
// Nothing in the build reads Viper directly.
package config

import (
	"net"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "VOCADOU"

// Keys.
const (
	KeyBuildID         = "build_id"
	KeyDataRoot        = "data_root"
	KeyOutputDir       = "output_dir"
	KeySiteURL         = "site_url"
	KeyExternalURLRoot = "external_url_root"
	KeyEmbedEnabled    = "embed.enabled"
	KeyEmbedTimeout    = "embed.timeout"
	KeyEmbedEndpoint   = "embed.endpoint"
	KeyRenderWorkers   = "render.workers"
	KeyWatchDebounce   = "watch.debounce"
	KeyServeHost       = "serve.host"
	KeyServePort       = "serve.port"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

type Config struct {
	BuildID         int    `mapstructure:"build_id" yaml:"build_id" json:"build_id"`
	DataRoot        string `mapstructure:"data_root" yaml:"data_root" json:"data_root"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	SiteURL         string `mapstructure:"site_url" yaml:"site_url" json:"site_url"`
	ExternalURLRoot string `mapstructure:"external_url_root" yaml:"external_url_root" json:"external_url_root"`

	Embed  EmbedConfig  `mapstructure:"embed" yaml:"embed" json:"embed"`
	Render RenderConfig `mapstructure:"render" yaml:"render" json:"render"`
	Watch  WatchConfig  `mapstructure:"watch" yaml:"watch" json:"watch"`
	Serve  ServeConfig  `mapstructure:"serve" yaml:"serve" json:"serve"`
	Log    LogConfig    `mapstructure:"log" yaml:"log" json:"log"`
}

type EmbedConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
}

type RenderConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

type ServeConfig struct {
	Host string `mapstructure:"host" yaml:"host" json:"host"`
	Port int    `mapstructure:"port" yaml:"port" json:"port"`
}

// Address is the host:port the preview server listens on.
func (s ServeConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBuildID, 0)
	v.SetDefault(KeyDataRoot, ".")
	v.SetDefault(KeyOutputDir, "dist")
	v.SetDefault(KeySiteURL, "https://toudaivocadou.org")
	v.SetDefault(KeyExternalURLRoot, "https://miku.toudaivocadou.org")
	v.SetDefault(KeyEmbedEnabled, true)
	v.SetDefault(KeyEmbedTimeout, 5*time.Second)
	v.SetDefault(KeyEmbedEndpoint, "https://embed.bsky.app/oembed")
	v.SetDefault(KeyRenderWorkers, runtime.NumCPU())
	v.SetDefault(KeyWatchDebounce, 300*time.Millisecond)
	v.SetDefault(KeyServeHost, "localhost")
	v.SetDefault(KeyServePort, 8080)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load resolves the configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom resolves and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, siteerrors.Wrap(err, siteerrors.ErrorTypeConfig, siteerrors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	cfg.SiteURL = strings.TrimSpace(cfg.SiteURL)
	cfg.ExternalURLRoot = strings.TrimSuffix(strings.TrimSpace(cfg.ExternalURLRoot), "/")
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Render.Workers <= 0 {
		cfg.Render.Workers = runtime.NumCPU()
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns the first problem found.
func Validate(cfg *Config) error {
	if cfg.BuildID < 0 {
		return siteerrors.NewConfigError(KeyBuildID, "build id must not be negative").
			WithField(KeyBuildID, strconv.Itoa(cfg.BuildID))
	}
	if err := validateURL(KeySiteURL, cfg.SiteURL); err != nil {
		return err
	}
	if err := validateURL(KeyExternalURLRoot, cfg.ExternalURLRoot); err != nil {
		return err
	}
	if cfg.Embed.Enabled {
		if err := validateURL(KeyEmbedEndpoint, cfg.Embed.Endpoint); err != nil {
			return err
		}
	}
	if err := validatePath(KeyDataRoot, cfg.DataRoot, false); err != nil {
		return err
	}
	if err := validatePath(KeyOutputDir, cfg.OutputDir, true); err != nil {
		return err
	}
	if cfg.Embed.Timeout <= 0 {
		return siteerrors.NewConfigError(KeyEmbedTimeout, "embed timeout must be positive").
			WithField(KeyEmbedTimeout, cfg.Embed.Timeout.String())
	}
	if cfg.Watch.Debounce < 0 {
		return siteerrors.NewConfigError(KeyWatchDebounce, "debounce must not be negative").
			WithField(KeyWatchDebounce, cfg.Watch.Debounce.String())
	}
	// 0 lets the system pick a port in tests
	if cfg.Serve.Port < 0 || cfg.Serve.Port > 65535 {
		return siteerrors.NewConfigError(KeyServePort, "port is not in range 0-65535").
			WithField(KeyServePort, strconv.Itoa(cfg.Serve.Port))
	}
	if strings.ContainsAny(cfg.Serve.Host, dangerousChars) {
		return siteerrors.NewConfigError(KeyServeHost, "host contains a forbidden character").
			WithField(KeyServeHost, cfg.Serve.Host)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return siteerrors.NewConfigError(KeyLogLevel, "unknown log level").
			WithField(KeyLogLevel, cfg.Log.Level).
			WithHint("use one of debug, info, warn, error")
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return siteerrors.NewConfigError(KeyLogFormat, "unknown log format").
			WithField(KeyLogFormat, cfg.Log.Format).
			WithHint("use text or json")
	}
	return nil
}

const dangerousChars = ";&|$`()<>\"'\\"

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return siteerrors.NewConfigError(key, "must be an absolute http(s) URL").WithField(key, raw)
	}
	return nil
}

func validatePath(key, p string, output bool) error {
	if p == "" {
		return siteerrors.NewConfigError(key, "path is empty")
	}
	if strings.ContainsAny(p, dangerousChars) {
		return siteerrors.NewConfigError(key, "path contains a forbidden character").WithField(key, p)
	}
	if !output {
		return nil
	}

	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return nil
	}
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return siteerrors.NewConfigError(key, "output directory must not be the working directory or outside it").
			WithField(key, p)
	}
	return nil
}

// Warnings lists settings that are valid but probably unintended.
func Warnings(cfg *Config) []string {
	var out []string
	if strings.HasPrefix(cfg.SiteURL, "http://") {
		out = append(out, "site_url uses http; published links will not be https")
	}
	if !cfg.Embed.Enabled {
		out = append(out, "embeds are disabled; Bluesky posts render as plain links")
	}
	if cfg.Serve.Host == "0.0.0.0" || cfg.Serve.Host == "" {
		out = append(out, "preview server listens on all interfaces")
	}
	return out
}
