package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
)

// defaultTicketTTL is how long a WebSocket ticket is valid when the
// configuration does not say.
const defaultTicketTTL = 60 * time.Second

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        *auth.User `json:"user"`
}

// meResponse is the response body for GET /auth/me.
type meResponse struct {
	User        *auth.User        `json:"user"`
	Permissions []auth.Permission `json:"permissions"`
}

// ticketEntry is the identity bound to a WebSocket ticket.
type ticketEntry struct {
	userID string
	role   auth.Role
}

// ticketStore holds pending WebSocket authentication tickets.
// Tickets are single-use and expire after their TTL; go-cache evicts the
// stale ones in the background.
type ticketStore struct {
	ttl   time.Duration
	cache *cache.Cache
	mu    sync.Mutex // serialises consume so a ticket is honoured once
}

func newTicketStore(ttl time.Duration) *ticketStore {
	return &ticketStore{
		ttl:   ttl,
		cache: cache.New(ttl, 2*ttl),
	}
}

// issue stores a fresh ticket for entry and returns it.
func (t *ticketStore) issue(entry ticketEntry) string {
	ticket := uuid.NewString()
	t.cache.Set(ticket, entry, t.ttl)
	return ticket
}

// consume validates and removes ticket.
func (t *ticketStore) consume(ticket string) (ticketEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.cache.Get(ticket)
	if !ok {
		return ticketEntry{}, false
	}
	t.cache.Delete(ticket)
	entry, ok := v.(ticketEntry)
	return entry, ok
}

// pending returns the number of unexpired tickets.
func (t *ticketStore) pending() int {
	return t.cache.ItemCount()
}

// handleLogin authenticates a user and returns a JWT access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := auth.Authenticate(r.Context(), s.users, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserInactive) {
			s.logger.Warn("login failed", "username", req.Username, "error", err)
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login error", "error", err)
		writeInternalError(w, "authentication failed")
		return
	}

	ttl := s.accessTokenTTL()
	token, expiresAt, err := auth.GenerateAccessToken(user, []byte(s.secCfg.JWT.Secret), ttl)
	if err != nil {
		s.logger.Error("generating access token", "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expiresAt).Round(time.Second).Seconds()),
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

// handleMe returns the authenticated user and their permissions.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	user, err := s.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, "user no longer exists")
			return
		}
		writeInternalError(w, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		User:        user,
		Permissions: auth.PermissionsForRole(user.Role),
	})
}

// handleWSTicket issues a single-use WebSocket authentication ticket so
// the JWT never appears in a URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	ticket := s.tickets.issue(ticketEntry{userID: claims.Subject, role: claims.Role})
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(s.tickets.ttl.Seconds()),
	})
}
