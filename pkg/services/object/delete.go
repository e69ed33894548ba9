package object

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// DeletePrm groups parameters of the Delete operation.
type DeletePrm struct {
	addr object.Address

	session *session.Token
}

// WithAddress sets address of the removed object.
func (p *DeletePrm) WithAddress(v object.Address) *DeletePrm {
	if p != nil {
		p.addr = v
	}

	return p
}

// WithSession attaches the session token presented with the request.
func (p *DeletePrm) WithSession(v *session.Token) *DeletePrm {
	if p != nil {
		p.session = v
	}

	return p
}

// Delete authorizes and executes object removal: the local copy is
// dropped and removal is fanned out to the placement target set. For a
// complex object all its parts are removed as well.
func (s *Service) Delete(ctx context.Context, prm *DeletePrm) error {
	epoch, err := s.netmapSrc.Epoch()
	if err != nil {
		return fmt.Errorf("could not get current epoch: %w", err)
	}

	if prm.session != nil {
		err = s.guard.Authorize(prm.session, session.VerbDelete, prm.addr, epoch)
		if err != nil {
			return err
		}
	}

	cnr, err := s.cnrSrc.Get(prm.addr.Container())
	if err != nil {
		return fmt.Errorf("could not get container: %w", err)
	}

	nm, err := s.netmapSrc.NetMap()
	if err != nil {
		return fmt.Errorf("could not get network map: %w", err)
	}

	vectors, err := s.placementCache.ContainerNodes(prm.addr.Container(), cnr, nm)
	if err != nil {
		return err
	}

	addrs := []object.Address{prm.addr}

	hdr, err := s.localStorage.Head(prm.addr)
	if err != nil {
		hdr, err = s.headAnywhere(ctx, prm.addr, placement.FlattenVectors(vectors))
	}

	// a complex object is removed together with its parts
	if err == nil {
		if si := hdr.SplitInfo(); si != nil {
			for _, part := range si.Parts {
				addrs = append(addrs, object.NewAddress(prm.addr.Container(), part))
			}
		}
	}

	for _, addr := range addrs {
		err = s.removeEverywhere(ctx, addr, vectors)
		if err != nil {
			return err
		}
	}

	if s.metrics != nil {
		s.metrics.IncDeleteCounter()
	}

	return nil
}

func (s *Service) removeEverywhere(ctx context.Context, addr object.Address, vectors [][]netmap.NodeInfo) error {
	err := s.localStorage.Delete(addr)
	if err != nil {
		return fmt.Errorf("could not remove object locally: %w", err)
	}

	for _, n := range placement.FlattenVectors(vectors) {
		if n.ID() == s.localNodeID {
			continue
		}

		err = s.remoteSender.DeleteObject(ctx, n, addr)
		if err != nil && !client.IsErrObjectNotFound(err) {
			s.log.Warn("could not remove object from placement target",
				zap.String("node", n.ID()),
				zap.Stringer("object", addr),
				zap.Error(err),
			)
		}
	}

	return nil
}
