package store

import "sync"

// Keyspace is the process-wide collection of numbered databases. Databases
// are created lazily on first reference; database 0 always exists.
type Keyspace struct {
	mu  sync.Mutex
	dbs map[int]*Database
}

// NewKeyspace builds a Keyspace with database 0 already present.
func NewKeyspace() *Keyspace {
	ks := &Keyspace{dbs: make(map[int]*Database)}
	ks.dbs[0] = NewDatabase(0)
	return ks
}

// DB returns the database numbered n, creating it if this is the first
// reference.
func (ks *Keyspace) DB(n int) *Database {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	db, ok := ks.dbs[n]
	if !ok {
		db = NewDatabase(n)
		ks.dbs[n] = db
	}
	return db
}

// FlushAll clears every database that has been created so far.
func (ks *Keyspace) FlushAll() {
	ks.mu.Lock()
	dbs := make([]*Database, 0, len(ks.dbs))
	for _, db := range ks.dbs {
		dbs = append(dbs, db)
	}
	ks.mu.Unlock()
	for _, db := range dbs {
		db.Flush()
	}
}

// All returns a snapshot of every database created so far, for the
// background sweep.
func (ks *Keyspace) All() []*Database {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	dbs := make([]*Database, 0, len(ks.dbs))
	for _, db := range ks.dbs {
		dbs = append(dbs, db)
	}
	return dbs
}
