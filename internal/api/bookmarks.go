package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/store"
)

// bookmarksHandler provides REST handlers for bookmark management.
type bookmarksHandler struct {
	bookmarks store.BookmarkStoreIface
	log       *zap.Logger
}

// List returns the caller's bookmarks, newest first.
// GET /api/v1/bookmarks
func (h *bookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	bookmarks, err := h.bookmarks.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list bookmarks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := &BookmarkListResponse{Bookmarks: make([]*BookmarkResponse, 0, len(bookmarks))}
	for _, b := range bookmarks {
		resp.Bookmarks = append(resp.Bookmarks, toBookmarkResponse(b))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create inserts a new bookmark owned by the caller.
// POST /api/v1/bookmarks
func (h *bookmarksHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", "BAD_REQUEST")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required", "BAD_REQUEST")
		return
	}

	bookmark, err := h.bookmarks.Create(r.Context(), user.ID, req.Title, req.URL)
	if err != nil {
		h.log.Error("create bookmark", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, toBookmarkResponse(bookmark))
}

// Delete removes one of the caller's bookmarks by id.
// DELETE /api/v1/bookmarks/{id}
func (h *bookmarksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	id := chi.URLParam(r, "id")
	err := h.bookmarks.Delete(r.Context(), id, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bookmark not found", "NOT_FOUND")
		return
	}
	if err != nil {
		h.log.Error("delete bookmark", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toBookmarkResponse(b *store.Bookmark) *BookmarkResponse {
	return &BookmarkResponse{
		ID:        b.ID,
		Title:     b.Title,
		URL:       b.URL,
		CreatedAt: b.CreatedAt,
	}
}
