// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package logger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New returns JSON logger writing to out at provided level.
func New(level string, out io.Writer) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(parsed)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	return log, nil
}
