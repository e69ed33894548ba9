package policer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stornet-dev/stornet-node/pkg/core/container"
	cnrstorage "github.com/stornet-dev/stornet-node/pkg/core/container/storage"
	"github.com/stornet-dev/stornet-node/pkg/core/netmap"
	"github.com/stornet-dev/stornet-node/pkg/core/object"
	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
	"github.com/stornet-dev/stornet-node/pkg/placement"
	"github.com/stornet-dev/stornet-node/pkg/policy"
	"github.com/stornet-dev/stornet-node/pkg/services/replicator"
)

type policerEnv struct {
	policer *Policer
	net     *fakeNetwork
	local   *localstore.Storage
	cnrs    *cnrstorage.Storage
	nm      *netmap.NetMap
}

func newPolicerEnv(t *testing.T, localNodeID string, nm *netmap.NetMap) *policerEnv {
	local, err := localstore.Open(filepath.Join(t.TempDir(), "objects.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = local.Close() })

	net := newFakeNetwork()
	cnrs := cnrstorage.New()

	repl := replicator.New(
		replicator.WithPutTimeout(time.Second),
		replicator.WithRemoteSender(net),
		replicator.WithLocalStorage(local),
	)

	p := New(
		WithLocalNodeID(localNodeID),
		WithLocalStorage(local),
		WithContainerSource(cnrs),
		WithNetmapSource(netmap.NewStaticSource(nm)),
		WithPlacementCache(placement.NewContainerNodesCache(10)),
		WithRemoteHeaderClient(net),
		WithReplicator(repl),
		WithPolicerHeadTimeout(time.Second),
	)

	return &policerEnv{
		policer: p,
		net:     net,
		local:   local,
		cnrs:    cnrs,
		nm:      nm,
	}
}

func (e *policerEnv) announce(t *testing.T, policyText string) container.ID {
	t.Helper()

	pol, err := policy.Parse(policyText)
	require.NoError(t, err)

	cnr, err := container.New("owner", pol, policyText)
	require.NoError(t, err)

	id, err := e.cnrs.Put(cnr)
	require.NoError(t, err)

	return id
}

func TestProcessObjectReplicatesShortage(t *testing.T) {
	env := newPolicerEnv(t, "01", testNetMap("01", "02", "03"))

	cid := env.announce(t, `REP 2 CBF 1`)

	oid, err := object.NewID()
	require.NoError(t, err)

	addr := object.NewAddress(cid, oid)
	obj := object.New(addr, "owner", 4, 1)

	require.NoError(t, env.local.Put(obj, []byte("data")))

	env.policer.processObject(context.Background(), addr)

	// the local copy counts, one more copy was due on node 02
	got, err := env.net.HeadObject(context.Background(), testNode("02"), addr)
	require.NoError(t, err)
	require.Equal(t, addr, got.Address())
}

func TestProcessObjectSatisfiedPolicy(t *testing.T) {
	env := newPolicerEnv(t, "01", testNetMap("01", "02", "03"))

	cid := env.announce(t, `REP 2 CBF 1`)

	oid, err := object.NewID()
	require.NoError(t, err)

	addr := object.NewAddress(cid, oid)
	obj := object.New(addr, "owner", 0, 1)

	require.NoError(t, env.local.Put(obj, nil))
	env.net.store("02", obj)

	env.policer.processObject(context.Background(), addr)

	// no replication was needed, node 03 stays without a copy
	_, err = env.net.HeadObject(context.Background(), testNode("03"), addr)
	require.Error(t, err)
}

func TestProcessObjectDeletedContainer(t *testing.T) {
	env := newPolicerEnv(t, "01", testNetMap("01", "02"))

	// container was never announced to this node
	var cid container.ID
	cid[0] = 42

	oid, err := object.NewID()
	require.NoError(t, err)

	addr := object.NewAddress(cid, oid)

	require.NoError(t, env.local.Put(object.New(addr, "owner", 0, 1), nil))

	env.policer.processObject(context.Background(), addr)

	_, err = env.local.Head(addr)
	require.ErrorIs(t, err, localstore.ErrNotFound)
}

func TestProcessObjectBrokenNodeNotACandidate(t *testing.T) {
	env := newPolicerEnv(t, "01", testNetMap("01", "02", "03"))

	cid := env.announce(t, `REP 3 CBF 1`)

	oid, err := object.NewID()
	require.NoError(t, err)

	addr := object.NewAddress(cid, oid)
	obj := object.New(addr, "owner", 4, 1)

	require.NoError(t, env.local.Put(obj, []byte("data")))

	// node 02 is in unknown state, it must not receive a copy
	env.net.breakNode("02", context.DeadlineExceeded)

	env.policer.processObject(context.Background(), addr)

	require.Nil(t, env.net.objects["02"][addr])

	got, err := env.net.HeadObject(context.Background(), testNode("03"), addr)
	require.NoError(t, err)
	require.Equal(t, addr, got.Address())
}

func TestProcessObjectVanished(t *testing.T) {
	env := newPolicerEnv(t, "01", testNetMap("01", "02"))

	cid := env.announce(t, `REP 2 CBF 1`)

	oid, err := object.NewID()
	require.NoError(t, err)

	// the object was deleted between queue sampling and the task run
	addr := object.NewAddress(cid, oid)

	env.policer.processObject(context.Background(), addr)

	env.net.mtx.Lock()
	defer env.net.mtx.Unlock()

	require.Zero(t, env.net.headProbes)
	require.Empty(t, env.net.objects["02"])
}
