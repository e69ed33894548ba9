package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	containerstorage "github.com/stornet-dev/stornet-node/pkg/core/container/storage"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
	"github.com/stornet-dev/stornet-node/pkg/metrics"
	"github.com/stornet-dev/stornet-node/pkg/network/transport"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/policy"
	"github.com/stornet-dev/stornet-node/pkg/services/notificator/nats"
	objectservice "github.com/stornet-dev/stornet-node/pkg/services/object"
	"github.com/stornet-dev/stornet-node/pkg/services/policer"
	"github.com/stornet-dev/stornet-node/pkg/services/replicator"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
	"github.com/stornet-dev/stornet-node/pkg/services/session/storage/persistent"
	"github.com/stornet-dev/stornet-node/pkg/util/grace"
)

const tokenGCInterval = time.Minute

func runNode(cfgFile string) error {
	c, err := newConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := newLogger(c.string("logger.level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := grace.NewGracefulContext(log)

	nm, err := loadNetMap(c.string("netmap.file"))
	if err != nil {
		return err
	}

	localNodeID := c.string("node.id")
	if _, ok := nm.Node(localNodeID); !ok {
		return fmt.Errorf("node %q is not present in the network map", localNodeID)
	}

	netmapSrc := netmap.NewStaticSource(nm)

	objStore, err := localstore.Open(c.string("storage.path"),
		localstore.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("failed to open object storage: %w", err)
	}
	defer objStore.Close()

	tokenStore, err := persistent.NewTokenStore(c.string("session.path"),
		persistent.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("failed to open session token storage: %w", err)
	}
	defer tokenStore.Close()

	cnrStore := containerstorage.New()

	err = announceContainers(c, cnrStore, log)
	if err != nil {
		return err
	}

	nodeMetrics := metrics.NewNodeMetrics()
	nodeMetrics.SetEpoch(nm.Epoch())

	placementCache := placement.NewContainerNodesCache(c.int("placement.cache_size"))

	remoteClient := transport.NewClient(c.duration("transport.timeout"))

	guard := session.NewGuard(tokenStore,
		session.WithLogger(log),
	)

	repl := replicator.New(
		replicator.WithLogger(log),
		replicator.WithPutTimeout(c.duration("replicator.put_timeout")),
		replicator.WithRemoteSender(remoteClient),
		replicator.WithLocalStorage(objStore),
	)

	taskPool, err := ants.NewPool(c.int("pool.size"), ants.WithNonblocking(true))
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer taskPool.Release()

	verifier := policer.NewVerifier(
		policer.WithVerifierLogger(log),
		policer.WithRemoteHeader(remoteClient),
		policer.WithProbePool(taskPool),
		policer.WithHeadTimeout(c.duration("policer.head_timeout")),
		policer.WithMetrics(nodeMetrics),
	)

	objSvcOpts := []objectservice.Option{
		objectservice.WithLogger(log),
		objectservice.WithLocalNodeID(localNodeID),
		objectservice.WithLocalStorage(objStore),
		objectservice.WithContainerSource(cnrStore),
		objectservice.WithNetmapSource(netmapSrc),
		objectservice.WithPlacementCache(placementCache),
		objectservice.WithSessionGuard(guard),
		objectservice.WithReplicator(repl),
		objectservice.WithRemoteSender(remoteClient),
		objectservice.WithMetrics(nodeMetrics),
		objectservice.WithCopyVerifier(verifier),
	}

	if c.bool("notifications.enabled") {
		w := nats.New(nats.WithLogger(log))

		err = w.Connect(ctx, c.string("notifications.endpoint"))
		if err != nil {
			return fmt.Errorf("failed to connect to notification endpoint: %w", err)
		}

		objSvcOpts = append(objSvcOpts, objectservice.WithNotificator(w))
	}

	objSvc := objectservice.New(objSvcOpts...)

	p := policer.New(
		policer.WithLogger(log),
		policer.WithLocalNodeID(localNodeID),
		policer.WithLocalStorage(objStore),
		policer.WithContainerSource(cnrStore),
		policer.WithNetmapSource(netmapSrc),
		policer.WithPlacementCache(placementCache),
		policer.WithRemoteHeaderClient(remoteClient),
		policer.WithReplicator(repl),
		policer.WithPool(taskPool),
		policer.WithPolicerHeadTimeout(c.duration("policer.head_timeout")),
		policer.WithBatchSize(c.uint32("policer.batch_size")),
		policer.WithSleepDuration(c.duration("policer.sleep_duration")),
	)

	mux := http.NewServeMux()
	mux.Handle("/v1/", transport.NewServer(objSvc, log,
		transport.WithClientBackend(objSvc),
	))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    c.string("node.listen_address"),
		Handler: mux,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runTokenGC(ctx, tokenStore, netmapSrc)
	}()

	srvErr := make(chan error, 1)

	go func() {
		log.Info("listening",
			zap.String("address", srv.Addr))

		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		return fmt.Errorf("transport server failure: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Warn("transport server shutdown",
			zap.Error(err))
	}

	wg.Wait()

	log.Info("node stopped")

	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid logger level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// announceContainers seeds the container storage with containers listed
// in the config under the "containers" key.
func announceContainers(c *config, s *containerstorage.Storage, log *zap.Logger) error {
	for i, raw := range cast.ToSlice(c.v.Get("containers")) {
		entry := cast.ToStringMapString(raw)

		p, err := policy.Parse(entry["policy"])
		if err != nil {
			return fmt.Errorf("container #%d has invalid policy: %w", i, err)
		}

		cnr, err := container.New(container.OwnerID(entry["owner"]), p, entry["policy"])
		if err != nil {
			return fmt.Errorf("container #%d: %w", i, err)
		}

		if rawNonce, ok := entry["nonce"]; ok {
			nonce, err := uuid.Parse(rawNonce)
			if err != nil {
				return fmt.Errorf("container #%d has invalid nonce: %w", i, err)
			}

			cnr.SetNonce(nonce)
		}

		id, err := s.Put(cnr)
		if err != nil {
			return fmt.Errorf("container #%d: %w", i, err)
		}

		log.Info("announced container",
			zap.Stringer("cid", id),
			zap.String("owner", entry["owner"]))
	}

	return nil
}

// runTokenGC periodically drops session tokens whose validity window
// ended before the current epoch.
func runTokenGC(ctx context.Context, tokens *persistent.TokenStore, state netmap.State) {
	t := time.NewTicker(tokenGCInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tokens.RemoveOld(state.CurrentEpoch())
		}
	}
}
