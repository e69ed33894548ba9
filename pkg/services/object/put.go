package object

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/services/replicator"
	"github.com/stornet-dev/stornet-node/pkg/services/session"
)

// PutPrm groups parameters of the Put operation.
type PutPrm struct {
	owner container.OwnerID

	cnr container.ID

	payload []byte

	session *session.Token
}

// WithOwner sets the identity the object is written by.
func (p *PutPrm) WithOwner(v container.OwnerID) *PutPrm {
	if p != nil {
		p.owner = v
	}

	return p
}

// WithContainer sets the target container.
func (p *PutPrm) WithContainer(v container.ID) *PutPrm {
	if p != nil {
		p.cnr = v
	}

	return p
}

// WithPayload sets the object payload.
func (p *PutPrm) WithPayload(v []byte) *PutPrm {
	if p != nil {
		p.payload = v
	}

	return p
}

// WithSession attaches the session token presented with the request.
func (p *PutPrm) WithSession(v *session.Token) *PutPrm {
	if p != nil {
		p.session = v
	}

	return p
}

// Put authorizes and executes object storing. The receiving node
// becomes responsible for durably persisting the object and
// propagating it to the placement set of the container, whether or not
// the node itself belongs to that set.
//
// Payloads above the configured object size limit are stored as
// complex objects: the payload is cut into parts persisted as regular
// objects, and the logical object header records the split with its
// last-part pointer.
func (s *Service) Put(ctx context.Context, prm *PutPrm) (object.ID, error) {
	cnr, err := s.cnrSrc.Get(prm.cnr)
	if err != nil {
		return object.ID{}, fmt.Errorf("could not get container: %w", err)
	}

	epoch, err := s.netmapSrc.Epoch()
	if err != nil {
		return object.ID{}, fmt.Errorf("could not get current epoch: %w", err)
	}

	id, err := object.NewID()
	if err != nil {
		return object.ID{}, err
	}

	addr := object.NewAddress(prm.cnr, id)

	if prm.session != nil {
		err = s.guard.Authorize(prm.session, session.VerbPut, addr, epoch)
		if err != nil {
			return object.ID{}, err
		}
	}

	nm, err := s.netmapSrc.NetMap()
	if err != nil {
		return object.ID{}, fmt.Errorf("could not get network map: %w", err)
	}

	vectors, err := s.placementCache.ContainerNodes(prm.cnr, cnr, nm)
	if err != nil {
		return object.ID{}, err
	}

	obj := object.New(addr, prm.owner, uint64(len(prm.payload)), epoch)
	payload := prm.payload

	if obj.PayloadSize() > s.maxObjectSize {
		err = s.putParts(ctx, obj, prm.payload, epoch, vectors)
		if err != nil {
			return object.ID{}, err
		}

		// the logical object carries the split header only
		payload = nil
	}

	err = s.distribute(ctx, obj, payload, vectors)
	if err != nil {
		return object.ID{}, err
	}

	if s.metrics != nil {
		s.metrics.IncPutCounter()
	}

	if s.notificator != nil {
		err = s.notificator.Notify(addr.Container().EncodeToString(), addr)
		if err != nil {
			s.log.Warn("could not send object notification",
				zap.Stringer("object", addr),
				zap.Error(err),
			)
		}
	}

	return id, nil
}

// putParts cuts the payload into parts of at most the configured size,
// stores every part as a regular object on the same placement set and
// records the split in the logical object header.
func (s *Service) putParts(ctx context.Context, obj *object.Object, payload []byte, epoch uint64, vectors [][]netmap.NodeInfo) error {
	si := new(object.SplitInfo)

	for off := uint64(0); off < uint64(len(payload)); off += s.maxObjectSize {
		end := off + s.maxObjectSize
		if end > uint64(len(payload)) {
			end = uint64(len(payload))
		}

		partID, err := object.NewID()
		if err != nil {
			return err
		}

		partAddr := object.NewAddress(obj.Address().Container(), partID)
		part := object.New(partAddr, obj.Owner(), end-off, epoch)

		err = s.distribute(ctx, part, payload[off:end], vectors)
		if err != nil {
			return fmt.Errorf("store part %s: %w", partAddr, err)
		}

		si.Parts = append(si.Parts, partID)
	}

	si.LastPart = si.Parts[len(si.Parts)-1]
	obj.SetSplitInfo(si)

	return nil
}

// distribute durably persists the object locally, then propagates it to
// the placement vectors. When every target confirmed and the local node
// is not itself a placement target, the now redundant local copy is
// dropped; an unfinished propagation keeps it so that the policer can
// complete the replication later.
func (s *Service) distribute(ctx context.Context, obj *object.Object, payload []byte, vectors [][]netmap.NodeInfo) error {
	err := s.localStorage.Put(obj, payload)
	if err != nil {
		return fmt.Errorf("could not persist object locally: %w", err)
	}

	localIsTarget := false
	traverser := placement.NewTraverser(vectors)

	var targets []netmap.NodeInfo

	for {
		n, ok := traverser.Next()
		if !ok {
			break
		}

		if n.ID() == s.localNodeID {
			localIsTarget = true
			traverser.SubmitSuccess()

			continue
		}

		targets = append(targets, n)
	}

	if len(targets) > 0 {
		s.replicator.HandleTask(ctx, new(replicator.Task).
			WithObjectAddress(obj.Address()).
			WithObject(obj, payload).
			WithNodes(targets).
			WithCopiesNumber(uint32(len(targets))),
			&traverserResult{t: traverser},
		)
	}

	if !traverser.Success() {
		s.log.Warn("incomplete object propagation, keeping local copy",
			zap.Stringer("object", obj.Address()),
		)

		return nil
	}

	if !localIsTarget {
		err = s.localStorage.Delete(obj.Address())
		if err != nil {
			s.log.Warn("could not drop redundant local copy",
				zap.Stringer("object", obj.Address()),
				zap.Error(err),
			)
		}
	}

	return nil
}

type traverserResult struct {
	t *placement.Traverser
}

func (r *traverserResult) SubmitSuccessfulReplication(netmap.NodeInfo) {
	r.t.SubmitSuccess()
}
