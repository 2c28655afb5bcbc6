package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the logrus logger shared by the binaries. LOG_LEVEL in the
// environment wins over the configured level; verbose forces debug otherwise.
func NewLogger(level string, verbose bool) *logrus.Logger {
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = envLevel
	} else if verbose {
		level = "debug"
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}
