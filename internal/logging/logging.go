// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/totegamma/moodboard/internal/config"
)

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	if err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// New returns a logger writing to w in the configured format.
func New(conf config.Log, w io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	if conf.Level != "" {
		parsed, err := ParseLevel(conf.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(conf.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.Errorf("invalid log format %q", conf.Format)
	}

	return slog.New(handler), nil
}

// Setup installs the configured logger as slog's default.
func Setup(conf config.Log, w io.Writer) error {
	logger, err := New(conf, w)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
