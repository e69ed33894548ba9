package persistent

import (
	"time"

	"go.uber.org/zap"
)

type cfg struct {
	l       *zap.Logger
	timeout time.Duration
}

// Option configures a TokenStore being opened.
type Option func(*cfg)

func defaultCfg() *cfg {
	return &cfg{
		l:       zap.L(),
		timeout: 100 * time.Millisecond,
	}
}

// WithLogger sets the logger for background cleanup and read errors.
func WithLogger(v *zap.Logger) Option {
	return func(c *cfg) {
		c.l = v
	}
}

// WithTimeout bounds how long opening the database file may block
// waiting for the file lock.
func WithTimeout(v time.Duration) Option {
	return func(c *cfg) {
		c.timeout = v
	}
}
