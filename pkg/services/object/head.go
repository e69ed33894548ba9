package object

import (
	"context"
	"fmt"

	"github.com/stornet-dev/stornet-node/pkg/core/client"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// HeadPrm groups parameters of the Head operation.
type HeadPrm struct {
	addr object.Address

	session *session.Token

	direct bool
}

// WithAddress sets address of the requested object.
func (p *HeadPrm) WithAddress(v object.Address) *HeadPrm {
	if p != nil {
		p.addr = v
	}

	return p
}

// WithSession attaches the session token presented with the request.
func (p *HeadPrm) WithSession(v *session.Token) *HeadPrm {
	if p != nil {
		p.session = v
	}

	return p
}

// Direct marks the request as a direct existence probe: only the local
// storage is consulted, the request is never forwarded to other nodes.
func (p *HeadPrm) Direct() *HeadPrm {
	if p != nil {
		p.direct = true
	}

	return p
}

// Head authorizes and executes an object header request. A direct
// request answers strictly from the local storage; otherwise the node
// falls back to the placement targets of the container when it does
// not hold the object itself.
func (s *Service) Head(ctx context.Context, prm *HeadPrm) (*object.Object, error) {
	if prm.session != nil {
		epoch, err := s.netmapSrc.Epoch()
		if err != nil {
			return nil, fmt.Errorf("could not get current epoch: %w", err)
		}

		err = s.guard.Authorize(prm.session, session.VerbHead, prm.addr, epoch)
		if err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.IncHeadCounter()
	}

	obj, err := s.localStorage.Head(prm.addr)
	if err == nil || prm.direct {
		return obj, err
	}

	cnr, err := s.cnrSrc.Get(prm.addr.Container())
	if err != nil {
		return nil, fmt.Errorf("could not get container: %w", err)
	}

	nm, err := s.netmapSrc.NetMap()
	if err != nil {
		return nil, fmt.Errorf("could not get network map: %w", err)
	}

	vectors, err := s.placementCache.ContainerNodes(prm.addr.Container(), cnr, nm)
	if err != nil {
		return nil, err
	}

	return s.headAnywhere(ctx, prm.addr, placement.FlattenVectors(vectors))
}

// headAnywhere requests the object header from the given nodes one by
// one until some of them responds with it.
func (s *Service) headAnywhere(ctx context.Context, addr object.Address, nodes []netmap.NodeInfo) (*object.Object, error) {
	lastErr := fmt.Errorf("%s: %w", addr, localstore.ErrNotFound)

	for _, n := range nodes {
		if n.ID() == s.localNodeID {
			continue
		}

		obj, err := s.remoteSender.HeadObject(ctx, n, addr)
		if err == nil {
			return obj, nil
		}

		if !client.IsErrObjectNotFound(err) {
			lastErr = err
		}
	}

	return nil, lastErr
}
