// Package fs reads source trees and persists reports on the local file system.
package fs

import (
	"os"
	"path/filepath"
)

// DefaultReportDir returns the default directory for persisted reports.
// Uses XDG_STATE_HOME if set, otherwise falls back to ~/.local/state/sdkdrift,
// or system temp directory if home is unavailable.
func DefaultReportDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sdkdrift")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "sdkdrift")
	}
	return filepath.Join(home, ".local", "state", "sdkdrift")
}
