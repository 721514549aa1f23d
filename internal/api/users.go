package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
)

// ─── Request/Response Types ────────────────────────────────────────

type createUserRequest struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Password    string    `json:"password"`
	Role        auth.Role `json:"role"`
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// ─── Handlers ──────────────────────────────────────────────────────

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("list users failed", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCreateUser creates a new user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}
	if err := auth.CheckPassword(req.Password); err != nil {
		writeValidation(w, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = auth.RoleViewer
	}
	if !auth.IsValidRole(req.Role) {
		writeValidation(w, "invalid role: must be viewer, operator, or admin")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			writeConflict(w, "username already exists")
		case errors.Is(err, auth.ErrInvalidUser):
			writeValidation(w, err.Error())
		default:
			s.logger.Error("create user failed", "error", err)
			writeInternalError(w, "failed to create user")
		}
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role, "created_by", claims.Subject)
	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns a single user by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeUserError(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleSetUserActive enables or disables an account. Admins cannot
// disable themselves.
func (s *Server) handleSetUserActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil || req.IsActive == nil {
		writeBadRequest(w, "is_active is required")
		return
	}

	claims := claimsFromContext(r.Context())
	if id == claims.Subject && !*req.IsActive {
		writeBadRequest(w, "cannot deactivate your own account")
		return
	}

	if err := s.users.SetActive(r.Context(), id, *req.IsActive); err != nil {
		s.writeUserError(w, err, "set user active")
		return
	}

	s.logger.Info("user active flag changed", "user_id", id, "is_active", *req.IsActive, "changed_by", claims.Subject)
	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeUserError(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleChangePassword sets a new password. Callers may change their own
// password; changing someone else's needs user management rights.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())
	if id != claims.Subject && !auth.HasPermission(claims.Role, auth.PermUserManage) {
		writeForbidden(w, "insufficient permissions")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := auth.CheckPassword(req.Password); err != nil {
		writeValidation(w, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to change password")
		return
	}
	if err := s.users.UpdatePassword(r.Context(), id, hash); err != nil {
		s.writeUserError(w, err, "update password")
		return
	}

	s.logger.Info("password changed", "user_id", id, "changed_by", claims.Subject)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeUserError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, auth.ErrUserNotFound) {
		writeNotFound(w, "user not found")
		return
	}
	s.logger.Error(op+" failed", "error", err)
	writeInternalError(w, "failed to "+op)
}
