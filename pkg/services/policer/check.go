package policer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	cnrstorage "github.com/stornet-dev/stornet-node/pkg/core/container/storage"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/services/replicator"
)

func (p *Policer) processObject(ctx context.Context, addr object.Address) {
	// the object may be gone between queue sampling and the pool
	// picking the task up
	ok, err := p.localStorage.Exists(addr)
	if err != nil {
		p.log.Error("could not check object presence",
			zap.Stringer("object", addr),
			zap.Error(err),
		)

		return
	} else if !ok {
		return
	}

	cnr, err := p.cnrSrc.Get(addr.Container())
	if err != nil {
		if errors.Is(err, cnrstorage.ErrNotFound) {
			// the container is gone, the local copy is garbage
			err = p.localStorage.Delete(addr)
			if err != nil {
				p.log.Error("could not remove object of deleted container",
					zap.Stringer("object", addr),
					zap.Error(err),
				)
			}

			return
		}

		p.log.Error("could not get container",
			zap.Stringer("container", addr.Container()),
			zap.Error(err),
		)

		return
	}

	nm, err := p.netmapForObject(addr)
	if err != nil {
		p.log.Error("could not get network map snapshot",
			zap.Error(err),
		)

		return
	}

	vectors, err := p.placementCache.ContainerNodes(addr.Container(), cnr, nm)
	if err != nil {
		p.log.Error("could not build placement vectors for object",
			zap.Stringer("object", addr),
			zap.Error(err),
		)

		return
	}

	replicas := cnr.PlacementPolicy().Replicas

	for i := range vectors {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p.processNodes(ctx, addr, vectors[i], replicas[i].Count)
	}
}

// netmapForObject picks the network map snapshot placement of the
// object is verified against: the snapshot of the epoch the object was
// written at, or the latest one if the node has no record of the
// object header.
func (p *Policer) netmapForObject(addr object.Address) (*netmap.NetMap, error) {
	obj, err := p.localStorage.Head(addr)
	if err == nil {
		nm, err := p.netmapSrc.NetMapByEpoch(obj.CreatedAt())
		if err == nil {
			return nm, nil
		}
	}

	return p.netmapSrc.NetMap()
}

// processNodes probes the placement vector and schedules replication of
// the shortage. Probe errors other than not-found exclude the node from
// replication candidates for this pass: a node in unknown state must
// not be assumed to lack a copy.
func (p *Policer) processNodes(ctx context.Context, addr object.Address, nodes []netmap.NodeInfo, shortage uint32) {
	candidates := make([]netmap.NodeInfo, 0, len(nodes))

	for i := range nodes {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if nodes[i].ID() == p.localNodeID {
			if shortage > 0 {
				shortage--
			}

			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, p.headTimeout)

		_, err := p.remoteHeader.HeadObject(callCtx, nodes[i], addr)

		cancel()

		switch {
		case err == nil:
			if shortage > 0 {
				shortage--
			}
		case client.IsErrObjectNotFound(err):
			candidates = append(candidates, nodes[i])
		default:
			p.log.Error("could not receive object header",
				zap.String("node", nodes[i].ID()),
				zap.Stringer("object", addr),
				zap.Error(err),
			)
		}
	}

	if shortage > 0 {
		p.log.Info("shortage of object copies detected",
			zap.Stringer("object", addr),
			zap.Uint32("shortage", shortage),
		)

		p.replicator.HandleTask(ctx, new(replicator.Task).
			WithObjectAddress(addr).
			WithNodes(candidates).
			WithCopiesNumber(shortage),
			nil,
		)
	}
}
