package client

import (
	"context"
	"sync"
)

// Listener couples a feed subscription to a view: every event, regardless of
// class or payload, triggers exactly one refresh. Events are neither batched
// nor dropped: N events in quick succession mean N sequential refreshes.
type Listener struct {
	sub  FeedSubscription
	view *View

	once sync.Once
	done chan struct{}
}

// NewListener creates a listener over an open subscription.
func NewListener(sub FeedSubscription, view *View) *Listener {
	return &Listener{sub: sub, view: view, done: make(chan struct{})}
}

// Run consumes the feed until the subscription is cancelled or ctx ends.
// It blocks; run it on its own goroutine.
func (l *Listener) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-l.sub.Events():
			if !ok {
				return
			}
			l.view.Refresh(ctx)
		}
	}
}

// Stop cancels the subscription. Idempotent; the underlying Cancel is
// synchronous, so no refresh is triggered by events after Stop returns.
func (l *Listener) Stop() {
	l.once.Do(func() {
		l.sub.Cancel()
	})
}

// Done is closed when the run loop has exited.
func (l *Listener) Done() <-chan struct{} { return l.done }
