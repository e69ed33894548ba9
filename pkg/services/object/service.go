// Package object implements the object operation execution paths of a
// storage node: authorization of the request, durable local persistence
// and propagation of the object to its placement target set.
package object

import (
	"context"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/services/replicator"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// NotificationWriter pushes object notifications to the configured
// message broker.
type NotificationWriter interface {
	Notify(topic string, addr object.Address) error
}

// MetricsRegister counts object operations.
type MetricsRegister interface {
	IncPutCounter()
	IncDeleteCounter()
	IncHeadCounter()
}

// CopyVerifier counts object copies across the network.
type CopyVerifier interface {
	CountCopies(ctx context.Context, addr object.Address, nm *netmap.NetMap) (int, error)
}

// Service executes object operations at a single storage node.
//
// For correct operation must be created via New.
type Service struct {
	*cfg
}

// Option is an option for Service constructor.
type Option func(*cfg)

type cfg struct {
	log *zap.Logger

	localNodeID string

	maxObjectSize uint64

	localStorage *localstore.Storage

	cnrSrc container.Source

	netmapSrc netmap.Source

	placementCache *placement.ContainerNodesCache

	guard *session.Guard

	replicator *replicator.Replicator

	remoteSender client.Client

	notificator NotificationWriter

	metrics MetricsRegister

	verifier CopyVerifier
}

// defaultMaxObjectSize splits payloads above 64 MiB into parts.
const defaultMaxObjectSize = 64 << 20

func defaultCfg() *cfg {
	return &cfg{
		log:           zap.L(),
		maxObjectSize: defaultMaxObjectSize,
	}
}

// New creates, initializes and returns Service instance.
func New(opts ...Option) *Service {
	c := defaultCfg()

	for i := range opts {
		opts[i](c)
	}

	c.log = c.log.With(zap.String("component", "Object Service"))

	return &Service{
		cfg: c,
	}
}

// WithLogger returns option to set Logger of Service.
func WithLogger(v *zap.Logger) Option {
	return func(c *cfg) {
		c.log = v
	}
}

// WithLocalNodeID returns option to set the identifier this node is
// announced under in the network map.
func WithLocalNodeID(v string) Option {
	return func(c *cfg) {
		c.localNodeID = v
	}
}

// WithMaxObjectSize returns option to set the payload size limit above
// which objects are stored as multi-part (complex) ones.
func WithMaxObjectSize(v uint64) Option {
	return func(c *cfg) {
		if v > 0 {
			c.maxObjectSize = v
		}
	}
}

// WithLocalStorage returns option to set local object storage.
func WithLocalStorage(v *localstore.Storage) Option {
	return func(c *cfg) {
		c.localStorage = v
	}
}

// WithContainerSource returns option to set container source.
func WithContainerSource(v container.Source) Option {
	return func(c *cfg) {
		c.cnrSrc = v
	}
}

// WithNetmapSource returns option to set network map source.
func WithNetmapSource(v netmap.Source) Option {
	return func(c *cfg) {
		c.netmapSrc = v
	}
}

// WithPlacementCache returns option to set resolved placement cache.
func WithPlacementCache(v *placement.ContainerNodesCache) Option {
	return func(c *cfg) {
		c.placementCache = v
	}
}

// WithSessionGuard returns option to set the session authorization
// guard.
func WithSessionGuard(v *session.Guard) Option {
	return func(c *cfg) {
		c.guard = v
	}
}

// WithReplicator returns option to set object replicator.
func WithReplicator(v *replicator.Replicator) Option {
	return func(c *cfg) {
		c.replicator = v
	}
}

// WithRemoteSender returns option to set the remote object transport.
func WithRemoteSender(v client.Client) Option {
	return func(c *cfg) {
		c.remoteSender = v
	}
}

// WithNotificator returns option to set the object notification writer.
func WithNotificator(v NotificationWriter) Option {
	return func(c *cfg) {
		c.notificator = v
	}
}

// WithMetrics returns option to set the operation metrics register.
func WithMetrics(v MetricsRegister) Option {
	return func(c *cfg) {
		c.metrics = v
	}
}

// WithCopyVerifier returns option to set the copy verification engine
// backing the CountCopies operation.
func WithCopyVerifier(v CopyVerifier) Option {
	return func(c *cfg) {
		c.verifier = v
	}
}
