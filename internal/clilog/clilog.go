// Package clilog sets up the console logger the tools share.
package clilog

import (
	"os"

	"github.com/charmbracelet/log"
)

// New gets a logger writing to stderr, at debug level if debug is set.
// It also becomes the default logger.
func New(prefix string, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          prefix,
	})
	log.SetDefault(l)
	return l
}
