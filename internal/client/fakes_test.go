package client_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/marks-app/marks/internal/client"
)

// fakeRemote implements Identity, Persistence, and FeedOpener in memory.
// It mimics the remote contract: inserts get server-assigned ids and
// timestamps, lists come back newest first, and every mutation emits a feed
// event to open subscriptions.
type fakeRemote struct {
	mu        sync.Mutex
	session   *client.Session
	sessErr   error
	bookmarks []client.Bookmark
	nextID    int
	clock     time.Time

	listErr   error
	listGate  chan struct{} // when set, ListBookmarks blocks until it closes
	listCalls int
	insertErr error

	subs []*fakeSub
}

func newFakeRemote(session *client.Session) *fakeRemote {
	return &fakeRemote{session: session, clock: time.Unix(1_700_000_000, 0).UTC()}
}

func (f *fakeRemote) CurrentSession(ctx context.Context) (*client.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessErr != nil {
		return nil, f.sessErr
	}
	return f.session, nil
}

func (f *fakeRemote) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) ListBookmarks(ctx context.Context) ([]client.Bookmark, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	err := f.listErr
	out := make([]client.Bookmark, len(f.bookmarks))
	copy(out, f.bookmarks)
	f.mu.Unlock()

	if gate != nil {
		<-gate
		// Re-read state after the gate opens so the response reflects the
		// remote set at response time, like a slow network read would.
		f.mu.Lock()
		out = make([]client.Bookmark, len(f.bookmarks))
		copy(out, f.bookmarks)
		err = f.listErr
		f.mu.Unlock()
	}

	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeRemote) InsertBookmark(ctx context.Context, title, url string) error {
	f.mu.Lock()
	if f.insertErr != nil {
		err := f.insertErr
		f.mu.Unlock()
		return err
	}
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	f.bookmarks = append(f.bookmarks, client.Bookmark{
		ID:        fmt.Sprintf("bm-%d", f.nextID),
		Title:     title,
		URL:       url,
		CreatedAt: f.clock,
	})
	f.mu.Unlock()
	f.emit(client.FeedEvent{Type: "insert"})
	return nil
}

func (f *fakeRemote) DeleteBookmark(ctx context.Context, id string) error {
	f.mu.Lock()
	kept := f.bookmarks[:0]
	found := false
	for _, b := range f.bookmarks {
		if b.ID == id {
			found = true
			continue
		}
		kept = append(kept, b)
	}
	f.bookmarks = kept
	f.mu.Unlock()
	if !found {
		return errors.New("not found")
	}
	f.emit(client.FeedEvent{Type: "delete", ID: id})
	return nil
}

func (f *fakeRemote) OpenFeed(ctx context.Context) (client.FeedSubscription, error) {
	sub := &fakeSub{ch: make(chan client.FeedEvent, 64)}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *fakeRemote) emit(ev client.FeedEvent) {
	f.mu.Lock()
	subs := append([]*fakeSub(nil), f.subs...)
	f.mu.Unlock()
	for _, s := range subs {
		s.send(ev)
	}
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeRemote) titleByID(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookmarks {
		if b.ID == id {
			return b.Title
		}
	}
	return ""
}

type fakeSub struct {
	mu        sync.Mutex
	ch        chan client.FeedEvent
	cancelled bool
}

func (s *fakeSub) Events() <-chan client.FeedEvent { return s.ch }

func (s *fakeSub) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelled {
		s.cancelled = true
		close(s.ch)
	}
}

func (s *fakeSub) send(ev client.FeedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelled {
		s.ch <- ev
	}
}
