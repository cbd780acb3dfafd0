// Package logging builds the daemon's logger: logrus with the prefixed text
// formatter, one prefix per component.
package logging

import (
	"fmt"
	"io"
	"os"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New returns a logger writing to stderr at the named level.
func New(level string) (*logrus.Entry, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter returns a logger writing to w at the named level.
func NewWithWriter(level string, w io.Writer) (*logrus.Entry, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	f := new(prefixed.TextFormatter)
	f.TimestampFormat = "2006-01-02 15:04:05"
	f.FullTimestamp = true
	f.PrefixPadding = 10
	f.SpacePadding = 40
	logger.SetFormatter(f)
	return logrus.NewEntry(logger), nil
}

// Component tags entries from one part of the daemon.
func Component(l *logrus.Entry, name string) *logrus.Entry {
	return l.WithField("prefix", name)
}
