package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/store"
	"github.com/marks-app/marks/internal/testutil"
)

func seedUser(t *testing.T, users *store.UserStore, email string) *store.User {
	t.Helper()
	u, err := users.Upsert(context.Background(), "google", "sub-"+email, email, "Test User")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestBookmarkStore_CreateAndGet(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	bookmarks := store.NewBookmarkStore(conn, nil)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")

	created, err := bookmarks.Create(ctx, owner.ID, "Example", "https://example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("no id assigned")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("no timestamp assigned")
	}

	got, err := bookmarks.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Example" || got.URL != "https://example.com" || got.UserID != owner.ID {
		t.Fatalf("got %+v", got)
	}
}

func TestBookmarkStore_ListByOwnerNewestFirst(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	bookmarks := store.NewBookmarkStore(conn, nil)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")
	other := seedUser(t, users, "other@example.com")

	for _, title := range []string{"first", "second", "third"} {
		if _, err := bookmarks.Create(ctx, owner.ID, title, "https://"+title+".example"); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := bookmarks.Create(ctx, other.ID, "theirs", "https://theirs.example"); err != nil {
		t.Fatalf("Create theirs: %v", err)
	}

	got, err := bookmarks.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (owner-scoped)", len(got))
	}
	if got[0].Title != "third" || got[1].Title != "second" || got[2].Title != "first" {
		t.Fatalf("order = [%s %s %s], want newest first",
			got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestBookmarkStore_DeleteEnforcesOwnership(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	bookmarks := store.NewBookmarkStore(conn, nil)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")
	intruder := seedUser(t, users, "intruder@example.com")

	created, err := bookmarks.Create(ctx, owner.ID, "Mine", "https://mine.example")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := bookmarks.Delete(ctx, created.ID, intruder.ID); err != store.ErrNotFound {
		t.Fatalf("cross-owner delete err = %v, want ErrNotFound", err)
	}
	if _, err := bookmarks.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("row vanished after denied delete: %v", err)
	}

	if err := bookmarks.Delete(ctx, created.ID, owner.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := bookmarks.GetByID(ctx, created.ID); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}

	if err := bookmarks.Delete(ctx, created.ID, owner.ID); err != store.ErrNotFound {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestBookmarkStore_MutationsPublishEvents(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	hub := feed.NewHub(nil)
	bookmarks := store.NewBookmarkStore(conn, hub)
	ctx := context.Background()

	owner := seedUser(t, users, "owner@example.com")

	sub := hub.Subscribe(feed.Bookmarks)
	defer sub.Cancel()

	created, err := bookmarks.Create(ctx, owner.ID, "Example", "https://example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ev := <-sub.Events()
	if ev.Type != feed.EventInsert || ev.ID != created.ID {
		t.Fatalf("insert event = %+v", ev)
	}

	if err := bookmarks.Delete(ctx, created.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ev = <-sub.Events()
	if ev.Type != feed.EventDelete || ev.ID != created.ID {
		t.Fatalf("delete event = %+v", ev)
	}
}
