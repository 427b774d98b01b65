package realtime

import (
	"sort"
	"sync"
)

// Presence tracks which users are explicitly marked online. Membership
// is driven only by chat join/leave signals and disconnect cleanup,
// never by registry membership: a user can hold a live connection
// without being marked present yet.
type Presence struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

// NewPresence returns an empty presence set.
func NewPresence() *Presence {
	return &Presence{
		online: make(map[string]struct{}),
	}
}

// MarkOnline adds userID to the online set. Idempotent.
func (p *Presence) MarkOnline(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = struct{}{}
}

// MarkOffline removes userID from the online set. Idempotent.
func (p *Presence) MarkOffline(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

// Snapshot returns the current online set as a sorted value copy,
// detached from subsequent mutation.
func (p *Presence) Snapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
