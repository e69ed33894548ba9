// Package replicator propagates locally stored objects to the rest of
// their placement target set.
package replicator

import (
	"time"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
)

// Replicator represents the utility that replicates a stored object to
// the nodes of its placement vector which do not hold a copy yet.
type Replicator struct {
	*cfg
}

// Option is an option for Replicator constructor.
type Option func(*cfg)

type cfg struct {
	putTimeout time.Duration

	log *zap.Logger

	remoteSender client.Client

	localStorage *localstore.Storage
}

func defaultCfg() *cfg {
	return &cfg{
		log:        zap.L(),
		putTimeout: 5 * time.Second,
	}
}

// New creates, initializes and returns Replicator instance.
func New(opts ...Option) *Replicator {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	c.log = c.log.With(zap.String("component", "Object Replicator"))

	return &Replicator{
		cfg: c,
	}
}

// WithPutTimeout returns option to set put timeout of Replicator.
func WithPutTimeout(v time.Duration) Option {
	return func(c *cfg) {
		c.putTimeout = v
	}
}

// WithLogger returns option to set Logger of Replicator.
func WithLogger(v *zap.Logger) Option {
	return func(c *cfg) {
		c.log = v
	}
}

// WithRemoteSender returns option to set remote object sender of
// Replicator.
func WithRemoteSender(v client.Client) Option {
	return func(c *cfg) {
		c.remoteSender = v
	}
}

// WithLocalStorage returns option to set local object storage of
// Replicator.
func WithLocalStorage(v *localstore.Storage) Option {
	return func(c *cfg) {
		c.localStorage = v
	}
}
