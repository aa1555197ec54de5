package app

import (
	"strings"

	"github.com/docsentry/docsentry/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level,
// defaulting to info when the level is blank.
func ConfigureLogging(level string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Init(level)
}
