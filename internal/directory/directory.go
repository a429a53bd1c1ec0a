// Package directory holds the in-memory table of user-to-connection bindings.
// It is the single source of truth for who is online and the only shared
// mutable structure in the server; everything else goes through its methods.
package directory

import (
	"sort"
	"sync"
)

// Directory maps authenticated user ids to their live connection id. A user
// has at most one binding: a second connect for the same user supersedes the
// first (last-connect-wins). All methods are safe for concurrent use and none
// of them blocks on I/O, so a bind-then-announce sequence performed under the
// hub's lock is never interleaved with another connection's unbind.
type Directory struct {
	mu     sync.RWMutex
	byUser map[string]string // user id -> connection id
	byConn map[string]string // connection id -> user id
}

// New returns an empty Directory.
func New() *Directory {
	return &Directory{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

// Bind inserts or replaces the binding for userID. When the user already has
// a binding the old connection becomes stale: a later Unbind with the old
// connection id is a no-op. Idempotent under repeated calls with the same pair.
func (d *Directory) Bind(userID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.byUser[userID]; ok && old != connID {
		delete(d.byConn, old)
	}
	d.byUser[userID] = connID
	d.byConn[connID] = userID
}

// Unbind removes the binding whose connection id matches, if any. Unknown or
// stale connection ids are a no-op, not an error: a superseded connection may
// disconnect long after its binding was replaced.
func (d *Directory) Unbind(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.byConn[connID]
	if !ok {
		return
	}
	delete(d.byConn, connID)
	if d.byUser[userID] == connID {
		delete(d.byUser, userID)
	}
}

// Lookup returns the live connection id for userID, if bound.
func (d *Directory) Lookup(userID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	connID, ok := d.byUser[userID]
	return connID, ok
}

// Snapshot returns all currently bound user ids, sorted for determinism.
func (d *Directory) Snapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.byUser))
	for userID := range d.byUser {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids
}

// Len reports how many users are currently bound.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byUser)
}
