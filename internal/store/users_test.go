package store_test

import (
	"context"
	"testing"

	"github.com/marks-app/marks/internal/store"
	"github.com/marks-app/marks/internal/testutil"
)

func TestUserStore_UpsertIsIdempotentPerSubject(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	ctx := context.Background()

	first, err := users.Upsert(ctx, "google", "sub-1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Same subject comes back with fresh claims: same row, updated fields.
	second, err := users.Upsert(ctx, "google", "sub-1", "alice@example.com", "Alice B")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a new row: %s != %s", second.ID, first.ID)
	}
	if second.Email != "alice@example.com" || second.DisplayName != "Alice B" {
		t.Fatalf("claims not refreshed: %+v", second)
	}
}

func TestUserStore_GetByID(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	ctx := context.Background()

	u, err := users.Upsert(ctx, "google", "sub-1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Fatalf("got %+v", got)
	}

	if _, err := users.GetByID(ctx, "missing"); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserStore_GetByEmail(t *testing.T) {
	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn)
	ctx := context.Background()

	if _, err := users.Upsert(ctx, "google", "sub-1", "a@example.com", "Alice"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := users.GetByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Subject != "sub-1" {
		t.Fatalf("got %+v", got)
	}

	if _, err := users.GetByEmail(ctx, "nobody@example.com"); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
