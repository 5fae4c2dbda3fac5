package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Remote implements Identity, Persistence, and FeedOpener against a marks
// server, authenticating with a Bearer API token.
type Remote struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer

	// mu guards token and onUnauthorized: SignOut clears the token while
	// listener-triggered refreshes may still be reading it.
	mu             sync.Mutex
	token          string
	onUnauthorized func()
}

// NewRemote creates a Remote for the server at baseURL (e.g.
// "https://marks.example.com").
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		dialer:  websocket.DefaultDialer,
	}
}

// SetOnUnauthorized registers a callback fired once per 401 observed on any
// call. The session manager hooks this to invalidate itself.
func (r *Remote) SetOnUnauthorized(fn func()) {
	r.mu.Lock()
	r.onUnauthorized = fn
	r.mu.Unlock()
}

func (r *Remote) bearer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

func (r *Remote) notifyUnauthorized() {
	r.mu.Lock()
	fn := r.onUnauthorized
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// CurrentSession resolves the token's identity. A 401 means "no session",
// not an error.
func (r *Remote) CurrentSession(ctx context.Context) (*Session, error) {
	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	err := r.doJSON(ctx, http.MethodGet, "/api/v1/profile", nil, &profile)
	if err == errUnauthorized {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Session{UserID: profile.ID, Email: profile.Email}, nil
}

// SignOut forgets the token locally. Bearer tokens are revoked server-side
// via token management, not by the client.
func (r *Remote) SignOut(ctx context.Context) error {
	r.mu.Lock()
	r.token = ""
	r.mu.Unlock()
	return nil
}

// ListBookmarks fetches the full visible set, newest first.
func (r *Remote) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	var resp struct {
		Bookmarks []Bookmark `json:"bookmarks"`
	}
	if err := r.doJSON(ctx, http.MethodGet, "/api/v1/bookmarks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bookmarks, nil
}

// InsertBookmark creates a bookmark owned by the token's identity.
func (r *Remote) InsertBookmark(ctx context.Context, title, url string) error {
	body := map[string]string{"title": title, "url": url}
	return r.doJSON(ctx, http.MethodPost, "/api/v1/bookmarks", body, nil)
}

// DeleteBookmark deletes by identifier.
func (r *Remote) DeleteBookmark(ctx context.Context, id string) error {
	return r.doJSON(ctx, http.MethodDelete, "/api/v1/bookmarks/"+id, nil, nil)
}

var errUnauthorized = fmt.Errorf("unauthorized")

func (r *Remote) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+r.bearer())

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		r.notifyUnauthorized()
		return errUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// OpenFeed dials the server's WebSocket feed endpoint.
func (r *Remote) OpenFeed(ctx context.Context) (FeedSubscription, error) {
	wsURL := r.baseURL + "/api/v1/feed"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+r.bearer())

	conn, resp, err := r.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			r.notifyUnauthorized()
		}
		return nil, fmt.Errorf("dial feed: %w", err)
	}

	sub := &wsSubscription{conn: conn, ch: make(chan FeedEvent, 16)}
	go sub.readLoop()
	return sub, nil
}

// wsSubscription adapts a WebSocket connection to FeedSubscription.
type wsSubscription struct {
	conn *websocket.Conn
	ch   chan FeedEvent
	once sync.Once
}

func (s *wsSubscription) Events() <-chan FeedEvent { return s.ch }

// Cancel closes the connection. The read loop then closes the event
// channel, which ends any listener ranging over it.
func (s *wsSubscription) Cancel() {
	s.once.Do(func() {
		_ = s.conn.Close()
	})
}

func (s *wsSubscription) readLoop() {
	defer close(s.ch)
	for {
		var ev FeedEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			return
		}
		s.ch <- ev
	}
}
