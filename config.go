package sdkdrift

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Config holds the paths and thresholds shared by every engine component.
// It is passed explicitly; nothing in the engine reads global state.
type Config struct {
	// GeneratedMarker is the path segment that identifies the generated
	// tree inside an import specifier, e.g. "generated" in "../generated/models".
	GeneratedMarker string `json:"generated_marker" mapstructure:"generated_marker"`
	// GeneratedPathPrefix restricts which diff paths count as generated
	// code. Empty means the diff is already scoped to the generated tree.
	GeneratedPathPrefix string `json:"generated_path_prefix" mapstructure:"generated_path_prefix"`
	// APIDir is the path segment holding generated API classes.
	APIDir string `json:"api_dir" mapstructure:"api_dir"`

	// Include and Exclude are doublestar globs applied when reading trees.
	Include []string `json:"include" mapstructure:"include"`
	Exclude []string `json:"exclude" mapstructure:"exclude"`

	// MaxFileBytes bounds how much of a single source file is read.
	MaxFileBytes int64 `json:"max_file_bytes" mapstructure:"max_file_bytes"`
	// ReadTimeout bounds a single file read.
	ReadTimeout time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	// Concurrency bounds fan-out reads and profile building.
	Concurrency int `json:"concurrency" mapstructure:"concurrency"`

	Tiers TierConfig `json:"tiers" mapstructure:"tiers"`
	Risk  RiskConfig `json:"risk" mapstructure:"risk"`
}

// TierConfig maps an affected-import count to a wrapper tier.
type TierConfig struct {
	High   int `json:"high" mapstructure:"high"`
	Medium int `json:"medium" mapstructure:"medium"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		GeneratedMarker: "generated",
		APIDir:          "apis",
		Include:         []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.mjs"},
		Exclude:         []string{"**/node_modules/**", "**/*.d.ts", "**/*.test.ts", "**/*.spec.ts"},
		MaxFileBytes:    512 * 1024,
		ReadTimeout:     5 * time.Second,
		Concurrency:     8,
		Tiers: TierConfig{
			High:   5,
			Medium: 2,
		},
		Risk: DefaultRiskConfig(),
	}
}

// Validate checks the configuration for inconsistent values.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.GeneratedMarker) == "" {
		errs = append(errs, errors.New("generated_marker must not be empty"))
	}
	if c.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_file_bytes must be positive, got %d", c.MaxFileBytes))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.Tiers.Medium <= 0 || c.Tiers.High <= c.Tiers.Medium {
		errs = append(errs, fmt.Errorf("tiers must satisfy 0 < medium < high, got medium=%d high=%d",
			c.Tiers.Medium, c.Tiers.High))
	}
	if err := c.Risk.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsGeneratedPath reports whether a diff path belongs to the generated tree.
func (c Config) IsGeneratedPath(p string) bool {
	if c.GeneratedPathPrefix == "" {
		return true
	}
	prefix := strings.TrimSuffix(c.GeneratedPathPrefix, "/") + "/"
	return strings.HasPrefix(p, prefix)
}

// IsAPIPath reports whether a diff path is a generated API file.
func (c Config) IsAPIPath(p string) bool {
	return c.IsGeneratedPath(p) && hasSegment(p, c.APIDir)
}

// IsGeneratedImport reports whether an import specifier targets the
// generated tree.
func (c Config) IsGeneratedImport(source string) bool {
	return hasSegment(source, c.GeneratedMarker)
}

// TierFor maps an affected-import count to a tier.
func (c Config) TierFor(count int) RiskLevel {
	switch {
	case count >= c.Tiers.High:
		return RiskHigh
	case count >= c.Tiers.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}

func hasSegment(p, segment string) bool {
	if segment == "" {
		return false
	}
	for _, s := range strings.Split(path.Clean(p), "/") {
		if s == segment {
			return true
		}
	}
	return false
}
