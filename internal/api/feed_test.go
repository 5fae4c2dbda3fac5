package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marks-app/marks/internal/feed"
)

func dialFeed(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/feed"
	header := http.Header{"Authorization": {"Bearer " + ts.token}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial feed: %v (resp %v)", err, resp)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestFeedAPI_StreamsMutationEvents(t *testing.T) {
	ts := newTestServer(t)
	conn := dialFeed(t, ts)

	created, err := ts.bookmarks.Create(context.Background(), ts.user.ID, "Example", "https://example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev feed.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != feed.EventInsert || ev.Channel != feed.Bookmarks || ev.ID != created.ID {
		t.Fatalf("event = %+v", ev)
	}

	if err := ts.bookmarks.Delete(context.Background(), created.ID, ts.user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != feed.EventDelete || ev.ID != created.ID {
		t.Fatalf("event = %+v", ev)
	}
}

func TestFeedAPI_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/feed"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("unauthenticated dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %v, want 401", resp)
	}
}
