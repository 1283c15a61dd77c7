package store

import (
	"sync"
	"time"
)

// Database is a single numbered keyspace: a key-to-Value mapping with
// lazy-expiry lookup and typed access, guarded by its own RWMutex so the
// caller can hold one lock per database rather than one for the whole
// server.
type Database struct {
	id int
	mu sync.RWMutex
	m  map[string]*Value
}

// NewDatabase creates an empty database numbered id.
func NewDatabase(id int) *Database {
	return &Database{id: id, m: make(map[string]*Value)}
}

// ID returns the database's numeric identifier.
func (d *Database) ID() int {
	return d.id
}

// Get looks up key, deleting and reporting ErrNotFound if the stored value
// has expired.
func (d *Database) Get(key []byte) (*Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getLocked(key)
}

// getLocked assumes d.mu is already held for writing (expiry deletion may
// mutate the map).
func (d *Database) getLocked(key []byte) (*Value, error) {
	v, ok := d.m[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	if v.Expired(time.Now()) {
		delete(d.m, string(key))
		return nil, ErrNotFound
	}
	return v, nil
}

// GetTyped looks up key and requires the stored value to have the given
// Kind, reporting ErrWrongType on a mismatch and ErrNotFound on a miss or
// expired entry.
func (d *Database) GetTyped(key []byte, kind Kind) (*Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.getLocked(key)
	if err != nil {
		return nil, err
	}
	if v.Kind != kind {
		return nil, ErrWrongType
	}
	return v, nil
}

// Set unconditionally stores value at key, replacing any existing entry
// (including its expiry).
func (d *Database) Set(key []byte, value *Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[string(key)] = value
}

// Delete removes key, reporting whether a live entry was actually removed.
// An expired entry still standing in the map is reaped as well but not
// counted, since every lookup already treats it as absent.
func (d *Database) Delete(key []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[string(key)]
	delete(d.m, string(key))
	return ok && !v.Expired(time.Now())
}

// Exists reports whether key is present and unexpired, without the
// type-mismatch distinction GetTyped makes.
func (d *Database) Exists(key []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.getLocked(key)
	return err == nil
}

// Expire sets key's expiry to at, returning false if the key is absent or
// expired.
func (d *Database) Expire(key []byte, at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.getLocked(key)
	if err != nil {
		return false
	}
	v.Expires = at
	return true
}

// Persist clears key's expiry, returning false if the key is absent,
// expired, or already has no expiry set.
func (d *Database) Persist(key []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.getLocked(key)
	if err != nil || v.Expires.IsZero() {
		return false
	}
	v.Expires = time.Time{}
	return true
}

// Flush clears every entry in the database.
func (d *Database) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m = make(map[string]*Value)
}

// Len returns the number of entries currently stored, including any not yet
// lazily reaped.
func (d *Database) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.m)
}

// Sweep deletes every entry whose expiry has passed as of now and returns
// the count removed. It is never required for correctness (GetTyped/Get
// already reap lazily) — see kvserver's optional background sweep.
func (d *Database) Sweep(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := 0
	for k, v := range d.m {
		if v.Expired(now) {
			delete(d.m, k)
			removed++
		}
	}
	return removed
}
