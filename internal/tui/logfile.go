package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If GUW_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.guw/logs/guw.log
func GetLogFilePath() string {
	if customPath := os.Getenv("GUW_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "guw.log"
	}
	return filepath.Join(homeDir, ".guw", "logs", "guw.log")
}
