package callgraph

import (
	"io"
	"log/slog"
)

type config struct {
	logger *slog.Logger
}

// Option configures a Walker or an Engine.
type Option func(*config)

// WithLogger sends debug output to l. The default discards it.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
