// Package config loads sdkdrift settings from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SDKDRIFT_CONCURRENCY.
const EnvPrefix = "SDKDRIFT"

// Parser names accepted by the parser setting.
const (
	ParserUnidiff = "unidiff"
	ParserGitdiff = "gitdiff"
	ParserGodiff  = "godiff"
)

// Config is the full set of settings for the command line tool: the engine
// configuration plus where inputs come from and where results go.
type Config struct {
	sdkdrift.Config `mapstructure:",squash"`

	Repo         string `json:"repo" mapstructure:"repo"`
	Base         string `json:"base" mapstructure:"base"`
	GeneratedDir string `json:"generated_dir" mapstructure:"generated_dir"`
	WrapperDir   string `json:"wrapper_dir" mapstructure:"wrapper_dir"`

	Parser        string `json:"parser" mapstructure:"parser"`
	StripComments bool   `json:"strip_comments" mapstructure:"strip_comments"`

	ReportDir   string `json:"report_dir" mapstructure:"report_dir"`
	HistoryFile string `json:"history_file" mapstructure:"history_file"`

	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Config:        sdkdrift.DefaultConfig(),
		Repo:          ".",
		Base:          "HEAD",
		GeneratedDir:  "src/generated",
		WrapperDir:    "src",
		Parser:        ParserUnidiff,
		StripComments: true,
		Logging:       logging.DefaultConfig(),
	}
}

// Validate checks the settings, including the engine configuration.
func (c Config) Validate() error {
	var errs []error
	if err := c.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Parser {
	case ParserUnidiff, ParserGitdiff, ParserGodiff:
	default:
		errs = append(errs, fmt.Errorf("parser must be one of %q, %q or %q, got %q",
			ParserUnidiff, ParserGitdiff, ParserGodiff, c.Parser))
	}
	if c.GeneratedDir == "" {
		errs = append(errs, errors.New("generated_dir must not be empty"))
	}
	return errors.Join(errs...)
}

// Load reads settings from path, or from sdkdrift.{yaml,json,toml} in the
// working directory when path is empty. A missing default file is not an
// error. SDKDRIFT_* environment variables override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sdkdrift")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides apply
// even when no config file mentions them.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("generated_marker", d.GeneratedMarker)
	v.SetDefault("generated_path_prefix", d.GeneratedPathPrefix)
	v.SetDefault("api_dir", d.APIDir)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("max_file_bytes", d.MaxFileBytes)
	v.SetDefault("read_timeout", d.ReadTimeout)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("tiers.high", d.Tiers.High)
	v.SetDefault("tiers.medium", d.Tiers.Medium)
	v.SetDefault("risk.files", thresholds(d.Risk.Files))
	v.SetDefault("risk.wrappers", thresholds(d.Risk.Wrappers))
	v.SetDefault("risk.api_files", thresholds(d.Risk.APIFiles))
	v.SetDefault("risk.high", d.Risk.High)
	v.SetDefault("risk.medium", d.Risk.Medium)

	v.SetDefault("repo", d.Repo)
	v.SetDefault("base", d.Base)
	v.SetDefault("generated_dir", d.GeneratedDir)
	v.SetDefault("wrapper_dir", d.WrapperDir)
	v.SetDefault("parser", d.Parser)
	v.SetDefault("strip_comments", d.StripComments)
	v.SetDefault("report_dir", d.ReportDir)
	v.SetDefault("history_file", d.HistoryFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.rotation.max_size", d.Logging.Rotation.MaxSize)
	v.SetDefault("logging.rotation.max_backups", d.Logging.Rotation.MaxBackups)
	v.SetDefault("logging.rotation.max_age", d.Logging.Rotation.MaxAge)
	v.SetDefault("logging.rotation.compress", d.Logging.Rotation.Compress)
}

func thresholds(ts []sdkdrift.Threshold) []map[string]any {
	out := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, map[string]any{"above": t.Above, "points": t.Points})
	}
	return out
}
