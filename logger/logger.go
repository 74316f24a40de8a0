// Package logger builds the logrus loggers used across gloomcore.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to out. level is a logrus level name
// ("debug", "info", ...); unknown names fall back to info. format "json"
// selects the JSON formatter, anything else the text formatter.
func New(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    true,
			QuoteEmptyFields: true,
		})
	}

	log.SetOutput(out)
	return log
}

// FromEnv creates a logger configured by LOG_LEVEL (default "warn") and
// LOG_FORMAT (default text). The terminal belongs to the game, so the
// default level keeps turn chatter out of it.
func FromEnv(out io.Writer) *logrus.Logger {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = "warn"
	}
	return New(level, os.Getenv("LOG_FORMAT"), out)
}

// Discard returns a logger that drops everything. It is the default for
// engines built without an explicit logger, and for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}
