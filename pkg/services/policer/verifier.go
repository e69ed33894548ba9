package policer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/util"
)

// ErrProbe is returned when an existence probe fails with anything
// other than "object not found". Such a failure signals an
// infrastructure fault, not a data fact, so the whole scan is aborted
// rather than reporting a possibly wrong copy count.
var ErrProbe = errors.New("object probe failed")

// ErrLastPartUnresolved is returned when no scanned node holds the
// header of a complex object, so its last part cannot be determined.
var ErrLastPartUnresolved = errors.New("could not resolve last part of complex object")

// MetricsRegister records measurements of finished verification scans.
type MetricsRegister interface {
	ObserveScanDuration(seconds float64)
}

// Verifier reconstructs which nodes of the network actually hold a
// given object by fanning direct existence probes out to every node.
//
// For correct operation must be created via NewVerifier.
type Verifier struct {
	*verifierCfg
}

// VerifierOption is an option of the Verifier constructor.
type VerifierOption func(*verifierCfg)

type verifierCfg struct {
	headTimeout time.Duration

	remoteHeader client.Client

	taskPool util.WorkerPool

	metrics MetricsRegister

	log *zap.Logger
}

func defaultVerifierCfg() *verifierCfg {
	return &verifierCfg{
		headTimeout: 5 * time.Second,
		log:         zap.L(),
	}
}

// NewVerifier creates, initializes and returns Verifier instance.
func NewVerifier(opts ...VerifierOption) *Verifier {
	c := defaultVerifierCfg()

	for i := range opts {
		opts[i](c)
	}

	c.log = c.log.With(zap.String("component", "Copy Verifier"))

	return &Verifier{
		verifierCfg: c,
	}
}

// WithHeadTimeout returns option to set per-probe timeout. A probe
// exceeding it is treated as a probe error, not as a missing copy, and
// aborts the scan.
func WithHeadTimeout(v time.Duration) VerifierOption {
	return func(c *verifierCfg) {
		c.headTimeout = v
	}
}

// WithRemoteHeader returns option to set the direct probe transport.
func WithRemoteHeader(v client.Client) VerifierOption {
	return func(c *verifierCfg) {
		c.remoteHeader = v
	}
}

// WithProbePool returns option to set the worker pool probes are
// dispatched on. Without a pool probes run in ad-hoc goroutines.
func WithProbePool(v util.WorkerPool) VerifierOption {
	return func(c *verifierCfg) {
		c.taskPool = v
	}
}

// WithMetrics returns option to set the scan measurement register.
func WithMetrics(v MetricsRegister) VerifierOption {
	return func(c *verifierCfg) {
		c.metrics = v
	}
}

// WithVerifierLogger returns option to set Logger of Verifier.
func WithVerifierLogger(v *zap.Logger) VerifierOption {
	return func(c *verifierCfg) {
		c.log = v
	}
}

// scan probes every node of the snapshot (except skipped ones) for the
// address, in parallel, and partitions the scanned nodes into holders
// and non-holders. Probes are independent: there is no ordering between
// them and one node's "not found" never affects another. The first
// probe failure other than not-found cancels the remaining probes and
// fails the scan.
func (v *Verifier) scan(ctx context.Context, addr object.Address, nm *netmap.NetMap, skip map[string]struct{}) (with, without []netmap.NodeInfo, err error) {
	if v.metrics != nil {
		start := time.Now()

		defer func() {
			v.metrics.ObserveScanDuration(time.Since(start).Seconds())
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg  sync.WaitGroup
		mtx sync.Mutex

		scanErr error
	)

	for _, n := range nm.Nodes() {
		if _, ok := skip[n.ID()]; ok {
			continue
		}

		n := n

		wg.Add(1)

		probe := func() {
			defer wg.Done()

			callCtx, cancelCall := context.WithTimeout(ctx, v.headTimeout)
			_, probeErr := v.remoteHeader.HeadObject(callCtx, n, addr)
			cancelCall()

			mtx.Lock()
			defer mtx.Unlock()

			switch {
			case probeErr == nil:
				with = append(with, n)
			case client.IsErrObjectNotFound(probeErr):
				without = append(without, n)
			default:
				if scanErr == nil {
					scanErr = fmt.Errorf("%w: node %s: %v", ErrProbe, n.ID(), probeErr)

					// fail-fast: sibling probes cannot change the outcome
					cancel()
				}
			}
		}

		if v.taskPool != nil {
			if poolErr := v.taskPool.Submit(probe); poolErr == nil {
				continue
			}
		}

		go probe()
	}

	wg.Wait()

	if scanErr != nil {
		return nil, nil, scanErr
	}

	sortNodes(with)
	sortNodes(without)

	return with, without, nil
}

// NodesWithObject returns the nodes of the snapshot observed to hold
// the object. Nodes listed in skip are excluded from the scan.
func (v *Verifier) NodesWithObject(ctx context.Context, addr object.Address, nm *netmap.NetMap, skip ...string) ([]netmap.NodeInfo, error) {
	skipSet := make(map[string]struct{}, len(skip))
	for _, id := range skip {
		skipSet[id] = struct{}{}
	}

	with, _, err := v.scan(ctx, addr, nm, skipSet)
	if err != nil {
		return nil, err
	}

	return with, nil
}

// NodesWithoutObject returns the nodes of the snapshot observed to not
// hold the object.
func (v *Verifier) NodesWithoutObject(ctx context.Context, addr object.Address, nm *netmap.NetMap) ([]netmap.NodeInfo, error) {
	_, without, err := v.scan(ctx, addr, nm, nil)
	if err != nil {
		return nil, err
	}

	return without, nil
}

// CountCopies returns the number of copies of the object stored across
// the network. For a complex object the copy count is defined as the
// copy count of its last part, not of its literal parts: once a node
// holding the header reports a split, the probe is re-applied to the
// last part address.
func (v *Verifier) CountCopies(ctx context.Context, addr object.Address, nm *netmap.NetMap) (int, error) {
	with, _, err := v.scan(ctx, addr, nm, nil)
	if err != nil {
		return 0, err
	}

	if len(with) == 0 {
		return 0, nil
	}

	callCtx, cancelCall := context.WithTimeout(ctx, v.headTimeout)
	obj, err := v.remoteHeader.HeadObject(callCtx, with[0], addr)
	cancelCall()
	if err != nil {
		return 0, fmt.Errorf("%w: node %s: %v", ErrProbe, with[0].ID(), err)
	}

	if si := obj.SplitInfo(); si != nil {
		with, _, err = v.scan(ctx, object.NewAddress(addr.Container(), si.LastPart), nm, nil)
		if err != nil {
			return 0, err
		}
	}

	return len(with), nil
}

// ResolveLastPart returns the address of the terminal part anchoring
// the complex object. The header is requested from the network since
// the local node does not necessarily hold it. Returns
// ErrLastPartUnresolved if no node holds the header or the object is
// not a complex one.
func (v *Verifier) ResolveLastPart(ctx context.Context, addr object.Address, nm *netmap.NetMap) (object.Address, error) {
	for _, n := range nm.Nodes() {
		callCtx, cancelCall := context.WithTimeout(ctx, v.headTimeout)
		obj, err := v.remoteHeader.HeadObject(callCtx, n, addr)
		cancelCall()

		switch {
		case err == nil:
			if si := obj.SplitInfo(); si != nil {
				return object.NewAddress(addr.Container(), si.LastPart), nil
			}

			return object.Address{}, ErrLastPartUnresolved
		case client.IsErrObjectNotFound(err):
			continue
		default:
			return object.Address{}, fmt.Errorf("%w: node %s: %v", ErrProbe, n.ID(), err)
		}
	}

	return object.Address{}, ErrLastPartUnresolved
}

func sortNodes(nodes []netmap.NodeInfo) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID() < nodes[j].ID()
	})
}
