package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/metrics"
)

// Bookmark represents a row in the bookmarks table. The owner is fixed at
// creation and rows are never updated in place.
type Bookmark struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BookmarkStore is the sqlx-backed implementation of BookmarkStoreIface.
// Successful mutations publish a change event on the feed hub, which stands
// in for the managed database's change stream.
type BookmarkStore struct {
	db  *sqlx.DB
	hub *feed.Hub
}

// NewBookmarkStore creates a BookmarkStore. hub may be nil, in which case
// mutations publish nothing.
func NewBookmarkStore(db *sqlx.DB, hub *feed.Hub) *BookmarkStore {
	return &BookmarkStore{db: db, hub: hub}
}

func (s *BookmarkStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new bookmark owned by ownerID. The id and creation
// timestamp are assigned here, not by the caller.
func (s *BookmarkStore) Create(ctx context.Context, ownerID, title, url string) (*Bookmark, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO bookmarks (id, user_id, title, url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, ownerID, title, url, now)
	if err != nil {
		return nil, err
	}

	metrics.BookmarksCreatedTotal.Inc()
	s.publish(feed.EventInsert, id)

	return s.GetByID(ctx, id)
}

// GetByID returns the bookmark matching id, or ErrNotFound.
func (s *BookmarkStore) GetByID(ctx context.Context, id string) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b, s.q(`SELECT * FROM bookmarks WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOwner returns all bookmarks owned by ownerID, newest first. The id
// tiebreak keeps the order stable when two rows share a timestamp.
func (s *BookmarkStore) ListByOwner(ctx context.Context, ownerID string) ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.SelectContext(ctx, &bookmarks, s.q(`
		SELECT * FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC, id DESC
	`), ownerID)
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// Delete removes the bookmark matching id, provided ownerID owns it. Returns
// ErrNotFound when no such row exists. Ownership is enforced here so callers
// never have to check it themselves.
func (s *BookmarkStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM bookmarks WHERE id = ? AND user_id = ?
	`), id, ownerID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	metrics.BookmarksDeletedTotal.Inc()
	s.publish(feed.EventDelete, id)
	return nil
}

func (s *BookmarkStore) publish(eventType, id string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(feed.Event{Type: eventType, Channel: feed.Bookmarks, ID: id})
}
