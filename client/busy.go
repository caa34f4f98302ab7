package client

import "sync"

// BusyCounter is a reference-counted busy indicator. The pipeline acquires it
// on request start and releases it on every exit path; the UI-visible state
// is "count > 0".
type BusyCounter struct {
	mu       sync.Mutex
	count    int
	onChange func(busy bool)
}

// NewBusyCounter creates a counter. onChange, when non-nil, fires on every
// idle<->busy transition.
func NewBusyCounter(onChange func(busy bool)) *BusyCounter {
	return &BusyCounter{onChange: onChange}
}

// Add increments the in-flight count.
func (b *BusyCounter) Add() {
	b.mu.Lock()
	b.count++
	fire := b.count == 1
	b.mu.Unlock()

	if fire && b.onChange != nil {
		b.onChange(true)
	}
}

// Done decrements the in-flight count, never below zero. The callback fires
// only on a real busy->idle transition, not on a Done of an idle counter.
func (b *BusyCounter) Done() {
	b.mu.Lock()
	fire := false
	if b.count > 0 {
		b.count--
		fire = b.count == 0
	}
	b.mu.Unlock()

	if fire && b.onChange != nil {
		b.onChange(false)
	}
}

// Reset forces the counter back to idle.
func (b *BusyCounter) Reset() {
	b.mu.Lock()
	wasBusy := b.count > 0
	b.count = 0
	b.mu.Unlock()

	if wasBusy && b.onChange != nil {
		b.onChange(false)
	}
}

// Busy reports whether any request is in flight.
func (b *BusyCounter) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count > 0
}

// Count returns the current in-flight count.
func (b *BusyCounter) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
