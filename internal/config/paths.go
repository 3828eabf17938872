package config

import (
	"os"
	"path/filepath"
)

// LogDirectory returns the directory the TUI writes its log file to.
//
// Locations:
//   - Windows: %APPDATA%\Rescale\Browse\logs
//   - Unix: ~/.config/rescale-browse/logs
func LogDirectory() string {
	if dir := getConfigDir(); dir != "" {
		return filepath.Join(dir, "logs")
	}
	return filepath.Join(os.TempDir(), "rescale-browse-logs")
}
