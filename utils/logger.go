package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger; services receive it explicitly.
var Log = logrus.New()

// ConfigureLogger sets level and format ("json" or "text").
func ConfigureLogger(level, format string) *logrus.Logger {
	Log.SetOutput(os.Stdout)
	if format == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		Log.WithField("level", level).Warn("unknown log level, using info")
	}
	Log.SetLevel(lvl)
	return Log
}
