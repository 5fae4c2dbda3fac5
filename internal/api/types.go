package api

import "time"

// CreateBookmarkRequest is the request body for POST /api/v1/bookmarks.
type CreateBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// BookmarkResponse represents a bookmark in API responses.
type BookmarkResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkListResponse is the response body for GET /api/v1/bookmarks.
// Bookmarks are ordered by creation time descending.
type BookmarkListResponse struct {
	Bookmarks []*BookmarkResponse `json:"bookmarks"`
}

// ProfileResponse is the response body for GET /api/v1/profile.
type ProfileResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
