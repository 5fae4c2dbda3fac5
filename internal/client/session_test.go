package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marks-app/marks/internal/client"
)

func TestSessionManager_StartsLoading(t *testing.T) {
	remote := newFakeRemote(nil)
	sm := client.NewSessionManager(remote, nil)

	if sm.State() != client.StateLoading {
		t.Fatalf("state = %v, want loading", sm.State())
	}
}

func TestSessionManager_ResolvesAuthenticated(t *testing.T) {
	remote := newFakeRemote(&client.Session{UserID: "u1", Email: "a@example.com"})
	sm := client.NewSessionManager(remote, nil)

	var notified *client.Session
	sm.Subscribe(func(s *client.Session) { notified = s })

	sm.Start(context.Background())

	if sm.State() != client.StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", sm.State())
	}
	if notified == nil || notified.UserID != "u1" {
		t.Fatalf("subscriber got %+v, want session for u1", notified)
	}
}

func TestSessionManager_ResolvesUnauthenticated(t *testing.T) {
	remote := newFakeRemote(nil)
	sm := client.NewSessionManager(remote, nil)

	sm.Start(context.Background())

	if sm.State() != client.StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", sm.State())
	}
}

func TestSessionManager_QueryFailureMeansNoSession(t *testing.T) {
	remote := newFakeRemote(&client.Session{UserID: "u1"})
	remote.sessErr = errors.New("network down")
	sm := client.NewSessionManager(remote, nil)

	sm.Start(context.Background())

	if sm.State() != client.StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated after failed query", sm.State())
	}
	if sm.Session() != nil {
		t.Fatal("expected nil session after failed query")
	}
}

func TestSessionManager_SignOutNotifies(t *testing.T) {
	remote := newFakeRemote(&client.Session{UserID: "u1"})
	sm := client.NewSessionManager(remote, nil)
	sm.Start(context.Background())

	var changes []*client.Session
	sm.Subscribe(func(s *client.Session) { changes = append(changes, s) })

	sm.SignOut(context.Background())

	if sm.State() != client.StateUnauthenticated {
		t.Fatalf("state = %v, want unauthenticated", sm.State())
	}
	if len(changes) != 1 || changes[0] != nil {
		t.Fatalf("changes = %v, want single nil notification", changes)
	}
}

func TestSessionManager_Unsubscribe(t *testing.T) {
	remote := newFakeRemote(&client.Session{UserID: "u1"})
	sm := client.NewSessionManager(remote, nil)

	calls := 0
	unsub := sm.Subscribe(func(*client.Session) { calls++ })
	unsub()
	unsub() // safe to call twice

	sm.Start(context.Background())

	if calls != 0 {
		t.Fatalf("unsubscribed callback ran %d times", calls)
	}
}
