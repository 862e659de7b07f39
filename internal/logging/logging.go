// Package logging configures the leveled logger shared by the commands and
// formats counts for humans.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		l, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
		lvl = l
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: "starstage",
	}), nil
}

// Default logs info and above to stderr.
func Default() *log.Logger {
	l, _ := New(os.Stderr, "info")
	return l
}

// Discard drops everything. Used when a caller passes no logger.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Or returns l, or a discarding logger when l is nil.
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Count formats n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}
