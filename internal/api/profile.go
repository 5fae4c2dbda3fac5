package api

import (
	"net/http"

	"github.com/marks-app/marks/internal/auth"
)

// profileHandler serves the caller's identity.
type profileHandler struct{}

// Get returns the authenticated identity.
// GET /api/v1/profile
func (h *profileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	writeJSON(w, http.StatusOK, &ProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}
