package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// View holds the locally cached, ordered bookmark list for the current
// identity. The cache is replaced wholesale by successful refreshes and left
// untouched by failed ones; it is never patched incrementally.
//
// Refresh may run concurrently with itself. Responses apply in arrival
// order, not request order, so a slow older response can overwrite a newer
// one. That race is inherited behavior; the generation counter below exists
// only to discard responses that resolve after Detach, not to order live
// refreshes.
type View struct {
	persistence Persistence
	log         *zap.Logger

	mu        sync.Mutex
	attached  bool
	gen       uint64
	bookmarks []Bookmark
	onChange  func([]Bookmark)
}

// NewView creates a detached view with an empty cache.
func NewView(persistence Persistence, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	return &View{persistence: persistence, log: log}
}

// SetOnChange registers a callback invoked with a snapshot after every cache
// replacement. Pass nil to clear.
func (v *View) SetOnChange(fn func([]Bookmark)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Attach activates the view for a newly valid session, starting from an
// empty cache.
func (v *View) Attach() {
	v.mu.Lock()
	v.attached = true
	v.gen++
	v.bookmarks = nil
	v.mu.Unlock()
}

// Detach deactivates the view and clears the cache. Any refresh still in
// flight resolves without effect.
func (v *View) Detach() {
	v.mu.Lock()
	v.attached = false
	v.gen++
	v.bookmarks = nil
	v.mu.Unlock()
}

// Bookmarks returns a snapshot of the cached list, newest first.
func (v *View) Bookmarks() []Bookmark {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Bookmark, len(v.bookmarks))
	copy(out, v.bookmarks)
	return out
}

// Refresh re-fetches the full visible set and replaces the cache with the
// result. On failure the cache stays as it was and nothing is surfaced.
// Calling Refresh on a detached view is a no-op, and a result arriving after
// Detach is discarded.
func (v *View) Refresh(ctx context.Context) {
	v.mu.Lock()
	if !v.attached {
		v.mu.Unlock()
		return
	}
	gen := v.gen
	v.mu.Unlock()

	list, err := v.persistence.ListBookmarks(ctx)
	if err != nil {
		v.log.Warn("refresh failed, keeping cached list", zap.Error(err))
		return
	}

	v.mu.Lock()
	if v.gen != gen {
		// The session ended (or restarted) while this fetch was in flight.
		v.mu.Unlock()
		return
	}
	v.bookmarks = list
	fn := v.onChange
	var snapshot []Bookmark
	if fn != nil {
		snapshot = make([]Bookmark, len(list))
		copy(snapshot, list)
	}
	v.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}
