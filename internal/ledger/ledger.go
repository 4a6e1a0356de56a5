// Package ledger remembers tickets this process just wrote so the realtime
// echo of those writes can be dropped.
package ledger

import (
	"sync"
	"time"
)

const DefaultExpiry = time.Second

type Ledger struct {
	mu      sync.Mutex
	pending map[string]time.Time
	expiry  time.Duration
	now     func() time.Time
}

func New(expiry time.Duration) *Ledger {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Ledger{
		pending: make(map[string]time.Time),
		expiry:  expiry,
		now:     time.Now,
	}
}

// WithClock swaps the time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
	return l
}

// MarkPending suppresses realtime events for id until the expiry passes.
// Marking again extends the window.
func (l *Ledger) MarkPending(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until := l.now().Add(l.expiry)
	for _, id := range ids {
		if id != "" {
			l.pending[id] = until
		}
	}
}

func (l *Ledger) IsPending(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.pending[id]
	if !ok {
		return false
	}
	if !l.now().Before(until) {
		delete(l.pending, id)
		return false
	}
	return true
}

// Sweep drops expired entries and returns how many are still pending.
func (l *Ledger) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, until := range l.pending {
		if !now.Before(until) {
			delete(l.pending, id)
		}
	}
	return len(l.pending)
}
