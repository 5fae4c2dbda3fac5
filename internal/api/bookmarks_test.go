package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marks-app/marks/internal/api"
	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/store"
	"github.com/marks-app/marks/internal/testutil"
)

type testServer struct {
	*httptest.Server
	hub       *feed.Hub
	bookmarks *store.BookmarkStore
	user      *store.User
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	users := store.NewUserStore(conn)
	tokens := auth.NewSQLTokenStore(conn)
	hub := feed.NewHub(nil)
	bookmarks := store.NewBookmarkStore(conn, hub)

	user, err := users.Upsert(ctx, "google", "sub-1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := tokens.Create(ctx, user.ID, "test", hash, nil); err != nil {
		t.Fatalf("create token: %v", err)
	}

	router := api.NewAPIRouter(api.Deps{
		Auth:      auth.NewAPIAuthMiddleware(tokens, users, nil),
		Bookmarks: bookmarks,
		Hub:       hub,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, hub: hub, bookmarks: bookmarks, user: user, token: plaintext}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+ts.token)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestBookmarksAPI_CreateListDelete(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodPost, "/bookmarks", api.CreateBookmarkRequest{
		Title: "Example", URL: "https://example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, raw)
	}
	var created api.BookmarkResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Title != "Example" {
		t.Fatalf("created = %+v", created)
	}

	resp, raw = ts.do(t, http.MethodGet, "/bookmarks", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list api.BookmarkListResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Bookmarks) != 1 || list.Bookmarks[0].ID != created.ID {
		t.Fatalf("list = %+v", list.Bookmarks)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/bookmarks/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, raw = ts.do(t, http.MethodGet, "/bookmarks", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list = api.BookmarkListResponse{}
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(list.Bookmarks) != 0 {
		t.Fatalf("list after delete = %+v", list.Bookmarks)
	}
}

func TestBookmarksAPI_CreateValidation(t *testing.T) {
	ts := newTestServer(t)

	for name, body := range map[string]api.CreateBookmarkRequest{
		"missing title": {URL: "https://example.com"},
		"missing url":   {Title: "Example"},
	} {
		resp, _ := ts.do(t, http.MethodPost, "/bookmarks", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, resp.StatusCode)
		}
	}
}

func TestBookmarksAPI_DeleteUnknownIs404(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodDelete, "/bookmarks/no-such-id", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestBookmarksAPI_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/bookmarks")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProfileAPI_ReturnsCaller(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodGet, "/profile", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var profile api.ProfileResponse
	if err := json.Unmarshal(raw, &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.ID != ts.user.ID || profile.Email != "a@example.com" {
		t.Fatalf("profile = %+v", profile)
	}
}
