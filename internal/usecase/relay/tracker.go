package relay

import (
	"context"
	"sync"
)

// Tracker registers live connection workers so shutdown can cancel them
// and wait for a bounded drain.
type Tracker struct {
	mu      sync.Mutex
	workers map[string]*trackedWorker
	wg      sync.WaitGroup
}

type trackedWorker struct {
	cancel func()
	once   sync.Once
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		workers: make(map[string]*trackedWorker),
	}
}

// Register tracks a worker by connection id and returns its unregister
// function. Registering the same id again cancels the previous worker.
func (t *Tracker) Register(connID string, cancel func()) (unregister func()) {
	entry := &trackedWorker{cancel: cancel}

	t.mu.Lock()
	old := t.workers[connID]
	t.workers[connID] = entry
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		old.cancel()
		t.unregister(connID, old)
	}

	return func() { t.unregister(connID, entry) }
}

func (t *Tracker) unregister(connID string, entry *trackedWorker) {
	entry.once.Do(func() {
		t.mu.Lock()
		if t.workers[connID] == entry {
			delete(t.workers, connID)
		}
		t.mu.Unlock()
		t.wg.Done()
	})
}

// Count returns the number of live workers
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.workers)
}

// CancelAll cancels every live worker and reports how many were signaled
func (t *Tracker) CancelAll() int {
	var cancels []func()
	t.mu.Lock()
	for _, entry := range t.workers {
		cancels = append(cancels, entry.cancel)
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

// Wait blocks until every worker has unregistered or the context expires.
// Reports whether the drain completed.
func (t *Tracker) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
