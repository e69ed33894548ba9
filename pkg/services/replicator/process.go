package replicator

import (
	"context"

	"go.uber.org/zap"

	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
)

// TaskResult is a replication result interface.
type TaskResult interface {
	// SubmitSuccessfulReplication submits the successful object
	// replication to the given node.
	SubmitSuccessfulReplication(netmap.NodeInfo)
}

// HandleTask executes replication task inside the invoking goroutine.
// Passes all the nodes that accepted the replication to the TaskResult.
func (p *Replicator) HandleTask(ctx context.Context, task *Task, res TaskResult) {
	defer func() {
		p.log.Debug("replication task done",
			zap.Uint32("unfinished replicas", task.quantity),
		)
	}()

	if task.obj == nil {
		var err error

		task.obj, task.payload, err = p.localStorage.Get(task.addr)
		if err != nil {
			p.log.Error("could not get object from local storage",
				zap.Stringer("object", task.addr),
				zap.Error(err))

			return
		}
	}

	for i := 0; task.quantity > 0 && i < len(task.nodes); i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log := p.log.With(
			zap.String("node", task.nodes[i].ID()),
			zap.Stringer("object", task.addr),
		)

		callCtx, cancel := context.WithTimeout(ctx, p.putTimeout)

		err := p.remoteSender.PutObject(callCtx, task.nodes[i], task.obj, task.payload)

		cancel()

		if err != nil {
			log.Error("could not replicate object",
				zap.Error(err),
			)
		} else {
			log.Debug("object successfully replicated")

			task.quantity--

			if res != nil {
				res.SubmitSuccessfulReplication(task.nodes[i])
			}
		}
	}
}
