package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/marks-app/marks/internal/store"
)

// APIAuthMiddleware authenticates API requests. A Bearer token is checked
// first; when none is presented, the web session is accepted instead so the
// single-page app can call the same endpoints it would hit from the CLI.
type APIAuthMiddleware struct {
	tokens   TokenStore
	users    *store.UserStore
	sessions *scs.SessionManager
}

// NewAPIAuthMiddleware creates a new APIAuthMiddleware. sessions may be nil
// to accept Bearer tokens only.
func NewAPIAuthMiddleware(ts TokenStore, us *store.UserStore, sm *scs.SessionManager) *APIAuthMiddleware {
	return &APIAuthMiddleware{tokens: ts, users: us, sessions: sm}
}

// Authenticate extracts and validates a Bearer token or web session.
// On success the caller's *store.User is injected into the request context;
// otherwise the response is 401 with {"error": "unauthorized"}.
func (m *APIAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			m.authenticateBearer(w, r, next, strings.TrimPrefix(authHeader, "Bearer "))
			return
		}

		if m.sessions != nil {
			userID := m.sessions.GetString(r.Context(), SessionUserIDKey)
			if userID != "" {
				if user, err := m.users.GetByID(r.Context(), userID); err == nil {
					ctx := context.WithValue(r.Context(), UserContextKey, user)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
		}

		writeUnauthorized(w)
	})
}

func (m *APIAuthMiddleware) authenticateBearer(w http.ResponseWriter, r *http.Request, next http.Handler, plaintext string) {
	if plaintext == "" {
		writeUnauthorized(w)
		return
	}

	hash := HashToken(plaintext)
	rec, err := m.tokens.GetByHash(r.Context(), hash)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if rec.RevokedAt.Valid {
		writeUnauthorized(w)
		return
	}
	if rec.ExpiresAt.Valid && rec.ExpiresAt.Time.Before(time.Now()) {
		writeUnauthorized(w)
		return
	}

	user, err := m.users.GetByID(r.Context(), rec.UserID)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	// last_used_at is updated asynchronously to keep reads cheap.
	go func() { _ = m.tokens.UpdateLastUsed(context.Background(), rec.ID) }()

	ctx := context.WithValue(r.Context(), UserContextKey, user)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// writeUnauthorized writes a 401 JSON response with {"error": "unauthorized"}.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
