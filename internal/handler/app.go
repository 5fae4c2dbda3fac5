package handler

import (
	"net/http"

	"github.com/marks-app/marks/internal/auth"
)

// AppPage is the template data for the single-page bookmark view. The page
// itself talks to /api/v1 and the WebSocket feed; the server only renders
// the shell.
type AppPage struct {
	BasePage
}

// AppHandler serves the authenticated bookmark page.
type AppHandler struct{}

// NewAppHandler creates a new AppHandler.
func NewAppHandler() *AppHandler { return &AppHandler{} }

// Show serves GET /app.
func (h *AppHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	render(w, "app.html", AppPage{BasePage: BasePage{User: user}})
}
