package memory

import (
	"sync"
	"time"

	"campaign-grants/internal/domain/grants"
	"campaign-grants/internal/domain/resources"
	"campaign-grants/internal/notify"
)

// DB es el estado compartido de grants, ledger, log y outbox. Un único mutex
// serializa las transacciones del motor y las escrituras directas al ledger.
type DB struct {
	mu sync.Mutex

	grants map[string]grants.AbilityGrant
	usage  []grants.UsageLogEntry
	res    map[string]resources.State

	outbox      map[string]notify.Record
	outboxOrder []string

	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		grants: make(map[string]grants.AbilityGrant),
		res:    make(map[string]resources.State),
		outbox: make(map[string]notify.Record),
		now:    time.Now,
	}
}
