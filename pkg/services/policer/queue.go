package policer

import (
	"sync"

	"github.com/stornet-dev/stornet-node/pkg/core/object"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
)

// jobQueue produces batches of locally stored object addresses for the
// compliance loop, cycling through the whole storage over successive
// selections.
type jobQueue struct {
	mtx sync.Mutex

	localStorage *localstore.Storage

	offset int
}

func (q *jobQueue) Select(limit int) ([]object.Address, error) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	var all []object.Address

	err := q.localStorage.IterateAddresses(func(addr object.Address) bool {
		all = append(all, addr)
		return false
	})
	if err != nil {
		return nil, err
	}

	if len(all) == 0 {
		return nil, nil
	}

	if q.offset >= len(all) {
		q.offset = 0
	}

	res := make([]object.Address, 0, limit)

	for i := 0; i < limit && i < len(all); i++ {
		res = append(res, all[(q.offset+i)%len(all)])
	}

	q.offset = (q.offset + len(res)) % len(all)

	return res, nil
}
