package storage

import (
	"context"
	"sync"

	"warden-hq/warden/pkg/policy"
)

// Listener receives "policy set changed" notifications from an Observable.
// The decision cache implements it to invalidate memoized lookups.
type Listener interface {
	PolicySetChanged()
}

// Observable wraps a Storage and notifies subscribed listeners after every
// successful mutation. Reads pass through untouched. This is the wiring
// that connects storage writes to decision-cache invalidation without the
// cache observing storage internals itself.
type Observable struct {
	Storage

	mu        sync.RWMutex
	listeners []Listener
}

// NewObservable wraps backend.
func NewObservable(backend Storage) *Observable {
	return &Observable{Storage: backend}
}

// Subscribe registers a listener for mutation notifications.
func (o *Observable) Subscribe(l Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// Add implements Storage and notifies listeners on success.
func (o *Observable) Add(ctx context.Context, p *policy.Policy) error {
	if err := o.Storage.Add(ctx, p); err != nil {
		return err
	}
	o.notify()
	return nil
}

// Update implements Storage and notifies listeners on success.
func (o *Observable) Update(ctx context.Context, p *policy.Policy) error {
	if err := o.Storage.Update(ctx, p); err != nil {
		return err
	}
	o.notify()
	return nil
}

// Delete implements Storage and notifies listeners on success.
func (o *Observable) Delete(ctx context.Context, uid string) error {
	if err := o.Storage.Delete(ctx, uid); err != nil {
		return err
	}
	o.notify()
	return nil
}

func (o *Observable) notify() {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, l := range o.listeners {
		l.PolicySetChanged()
	}
}
