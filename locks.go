package recur

import (
	"sync"

	"github.com/xraph/recur/id"
)

const lockShards = 64

// lockTable serializes engine operations per subscription id. Ids are
// SHA-256 outputs, so the first byte distributes uniformly across
// shards. Locks guard the check-and-advance window only; they are
// released before any external ledger call so a reentrant caller
// observes committed state instead of deadlocking.
type lockTable struct {
	shards [lockShards]sync.Mutex
}

// lock acquires the shard for sid and returns its release func.
func (t *lockTable) lock(sid id.SubscriptionID) func() {
	m := &t.shards[int(sid[0])%lockShards]
	m.Lock()
	return m.Unlock
}
