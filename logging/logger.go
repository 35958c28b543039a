// Package logging builds the zap logger used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level, encoding and destination of log output.
type Config struct {
	Level    string         `json:"level" mapstructure:"level"`   // debug, info, warn or error
	Format   string         `json:"format" mapstructure:"format"` // json or console
	File     string         `json:"file" mapstructure:"file"`     // empty logs to stderr
	Rotation RotationConfig `json:"rotation" mapstructure:"rotation"`
}

// RotationConfig defines log file rotation settings (powered by lumberjack).
type RotationConfig struct {
	MaxSize    int  `json:"max_size" mapstructure:"max_size"`       // megabytes before rotation
	MaxBackups int  `json:"max_backups" mapstructure:"max_backups"` // old files to keep
	MaxAge     int  `json:"max_age" mapstructure:"max_age"`         // days to retain old files
	Compress   bool `json:"compress" mapstructure:"compress"`
}

// DefaultConfig logs warnings and errors to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Rotation: RotationConfig{
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

// ParseLevel maps a level name to a zap level. Unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New creates a logger from cfg. Output goes to stderr unless cfg.File is
// set, in which case the file is rotated by lumberjack.
func New(cfg Config) (*zap.Logger, error) {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		}
	}
	return NewWithWriter(cfg, w)
}

// NewWithWriter creates a logger from cfg that writes to w.
func NewWithWriter(cfg Config, w io.Writer) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(cfg.Level)))
	return zap.New(core), nil
}
