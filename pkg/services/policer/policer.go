// Package policer implements the storage-policy compliance service:
// it continuously verifies that locally stored objects are held by
// exactly the nodes their container policy resolves to, and schedules
// replication when copies are missing.
package policer

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/services/replicator"
)

// Policer represents the utility that verifies compliance with the
// object storage policy.
type Policer struct {
	*cfg

	queue *jobQueue
}

// Option is an option for Policer constructor.
type Option func(*cfg)

type cfg struct {
	headTimeout time.Duration

	log *zap.Logger

	localStorage *localstore.Storage

	cnrSrc container.Source

	netmapSrc netmap.Source

	placementCache *placement.ContainerNodesCache

	remoteHeader client.Client

	localNodeID string

	replicator *replicator.Replicator

	taskPool *ants.Pool

	batchSize uint32

	sleepDuration time.Duration
}

func defaultCfg() *cfg {
	return &cfg{
		log:           zap.L(),
		headTimeout:   5 * time.Second,
		batchSize:     10,
		sleepDuration: 1 * time.Second,
	}
}

// New creates, initializes and returns Policer instance.
func New(opts ...Option) *Policer {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	c.log = c.log.With(zap.String("component", "Object Policer"))

	return &Policer{
		cfg:   c,
		queue: &jobQueue{localStorage: c.localStorage},
	}
}

// Run starts the compliance loop and blocks until the context is done.
func (p *Policer) Run(ctx context.Context) {
	timer := time.NewTimer(p.sleepDuration)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("routine stopped", zap.Error(ctx.Err()))
			return
		case <-timer.C:
		}

		addrs, err := p.queue.Select(int(p.batchSize))
		if err != nil {
			p.log.Warn("could not select objects for compliance check",
				zap.Error(err),
			)
		}

		for i := range addrs {
			addr := addrs[i]

			err = p.taskPool.Submit(func() {
				p.processObject(ctx, addr)
			})
			if err != nil {
				p.log.Warn("pool submission", zap.Error(err))
			}
		}

		timer.Reset(p.sleepDuration)
	}
}

// WithPolicerHeadTimeout returns option to set Head timeout of Policer.
func WithPolicerHeadTimeout(v time.Duration) Option {
	return func(c *cfg) {
		c.headTimeout = v
	}
}

// WithLogger returns option to set Logger of Policer.
func WithLogger(v *zap.Logger) Option {
	return func(c *cfg) {
		c.log = v
	}
}

// WithLocalStorage returns option to set local object storage of
// Policer.
func WithLocalStorage(v *localstore.Storage) Option {
	return func(c *cfg) {
		c.localStorage = v
	}
}

// WithContainerSource returns option to set container source of
// Policer.
func WithContainerSource(v container.Source) Option {
	return func(c *cfg) {
		c.cnrSrc = v
	}
}

// WithNetmapSource returns option to set network map source of Policer.
func WithNetmapSource(v netmap.Source) Option {
	return func(c *cfg) {
		c.netmapSrc = v
	}
}

// WithPlacementCache returns option to set resolved placement cache of
// Policer.
func WithPlacementCache(v *placement.ContainerNodesCache) Option {
	return func(c *cfg) {
		c.placementCache = v
	}
}

// WithRemoteHeaderClient returns option to set object header receiver
// of Policer.
func WithRemoteHeaderClient(v client.Client) Option {
	return func(c *cfg) {
		c.remoteHeader = v
	}
}

// WithLocalNodeID returns option to set the identifier this node is
// announced under in the network map.
func WithLocalNodeID(v string) Option {
	return func(c *cfg) {
		c.localNodeID = v
	}
}

// WithReplicator returns option to set object replicator of Policer.
func WithReplicator(v *replicator.Replicator) Option {
	return func(c *cfg) {
		c.replicator = v
	}
}

// WithPool returns option to set pool for policy and replication
// operations.
func WithPool(v *ants.Pool) Option {
	return func(c *cfg) {
		c.taskPool = v
	}
}

// WithBatchSize returns option to set the number of objects checked
// per loop iteration.
func WithBatchSize(v uint32) Option {
	return func(c *cfg) {
		c.batchSize = v
	}
}

// WithSleepDuration returns option to set the pause between loop
// iterations.
func WithSleepDuration(v time.Duration) Option {
	return func(c *cfg) {
		c.sleepDuration = v
	}
}
