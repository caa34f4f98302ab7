package client

import (
	"context"
	"sync"
)

// refreshWave is one single-flight refresh execution: leader election to
// outcome publication. Waiters block on done and read the outcome written
// before it closed, so a waiter can never observe a value from a previous
// wave.
type refreshWave struct {
	done  chan struct{}
	token string
	err   error
}

// refreshGroup guarantees at most one outstanding refresh call regardless of
// how many concurrent callers invoke Do.
type refreshGroup struct {
	mu   sync.Mutex
	wave *refreshWave
}

// Do runs fn in the first caller (the leader) and parks every concurrent
// caller on the same outcome. The wave is installed under the lock before fn
// starts, so two callers can never both become leaders.
func (g *refreshGroup) Do(ctx context.Context, fn func() (string, error)) (string, error) {
	g.mu.Lock()
	if w := g.wave; w != nil {
		g.mu.Unlock()
		select {
		case <-w.done:
			return w.token, w.err
		case <-ctx.Done():
			// The shared wave keeps running; only this waiter gives up.
			return "", ctx.Err()
		}
	}

	w := &refreshWave{done: make(chan struct{})}
	g.wave = w
	g.mu.Unlock()

	w.token, w.err = fn()

	g.mu.Lock()
	g.wave = nil
	g.mu.Unlock()
	close(w.done)

	return w.token, w.err
}
