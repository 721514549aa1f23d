package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
)

// resetConfirmation must be echoed back to reset every setting.
const resetConfirmation = "RESET SETTINGS"

type reloadResponse struct {
	Status   string `json:"status"`
	Settings int    `json:"settings"`
	Version  int    `json:"version"`
}

type resetRequest struct {
	Confirm string `json:"confirm"`
}

// handleListSettings returns every setting in natural ID order.
func (s *Server) handleListSettings(w http.ResponseWriter, _ *http.Request) {
	list := s.settings.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": list,
		"count":    len(list),
	})
}

// handleGetSetting returns a single setting by ID.
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := s.settings.Get(id)
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSetSetting applies {"value": n} or {"wire": n} to a setting.
func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var cmd settings.CommandMessage
	if err := decodeJSON(r, &cmd); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	v, err := s.settings.Apply(r.Context(), id, cmd, settings.SourceAPI)
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleReloadSettings re-reads the schema file the service was started
// with.
func (s *Server) handleReloadSettings(w http.ResponseWriter, r *http.Request) {
	if s.schemaPath == "" {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "no schema file configured")
		return
	}

	if err := s.settings.ReloadFile(r.Context(), s.schemaPath); err != nil {
		s.writeSettingsError(w, err)
		return
	}

	schema := s.settings.Schema()
	writeJSON(w, http.StatusOK, reloadResponse{
		Status:   "ok",
		Settings: len(schema.Settings),
		Version:  schema.Version,
	})
}

// handleResetSettings returns every setting to its default.
//
// This is destructive, so the request must include an exact confirmation
// string.
func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Confirm != resetConfirmation {
		writeBadRequest(w, `confirm field must be exactly "`+resetConfirmation+`"`)
		return
	}

	n, err := s.settings.Reset(r.Context())
	if err != nil {
		s.writeSettingsError(w, err)
		return
	}

	claims := claimsFromContext(r.Context())
	s.logger.Info("settings reset to defaults", "count", n, "user_id", claims.Subject)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"reset":  n,
	})
}

// writeSettingsError maps settings sentinel errors to HTTP responses.
func (s *Server) writeSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrSettingNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, settings.ErrInvalidValue), errors.Is(err, settings.ErrInvalidSchema):
		writeValidation(w, err.Error())
	case errors.Is(err, settings.ErrChangeVetoed):
		writeConflict(w, err.Error())
	default:
		s.logger.Error("settings operation failed", "error", err)
		writeInternalError(w, "settings operation failed")
	}
}
