// Package model holds the panel's in-memory entities (areas, points,
// outputs, doors) and panel-level info, plus the observer registry that
// notifies callers synchronously when any of them change.
package model

import "sync"

// Observable is a process-local broadcast point, grounded on the
// reference implementation's Observable class (attach/detach/_notify).
// Observers are invoked synchronously on whatever goroutine calls Notify
// (the session read loop, the poll loop, the supervisor, or a background
// follow-up goroutine), so observers must be side-effect-light and must
// not block.
type Observable struct {
	mu        sync.RWMutex
	nextID    uint64
	observers map[uint64]func()
}

// Attach registers an observer, returning a function that detaches it.
func (o *Observable) Attach(fn func()) (detach func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.observers == nil {
		o.observers = make(map[uint64]func())
	}
	id := o.nextID
	o.nextID++
	o.observers[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

// Notify invokes every attached observer. Order across observers is
// unspecified. Successive notifications from one goroutine reach an
// observer in call order; notifications from different goroutines are
// not ordered relative to each other.
func (o *Observable) Notify() {
	o.mu.RLock()
	fns := make([]func(), 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
