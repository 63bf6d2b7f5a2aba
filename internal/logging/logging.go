// Package logging holds the logr conventions shared by the schema packages.
package logging

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// Default returns a logger writing to stderr through the standard library
// log package.
func Default() logr.Logger {
	return stdr.New(log.New(os.Stderr, "autoschema ", log.LstdFlags))
}

// Warn logs a recoverable problem. logr has no warning level, so warnings are
// info records tagged severity=warning.
func Warn(l logr.Logger, msg string, keysAndValues ...interface{}) {
	l.Info(msg, append([]interface{}{"severity", "warning"}, keysAndValues...)...)
}
