package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/nerrad567/gray-logic-toolkit/internal/ansihtml"
	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
)

// ─── Remap ─────────────────────────────────────────────────────────

// remapRequest converts Value, read as From, into To. With Range set the
// value is treated as an engineering value clamped into the range and
// projected onto To.
type remapRequest struct {
	Value json.Number  `json:"value"`
	From  remap.Kind   `json:"from"`
	To    remap.Kind   `json:"to"`
	Range *remap.Range `json:"range,omitempty"`
}

type remapResponse struct {
	Input  remap.Value `json:"input"`
	From   remap.Kind  `json:"from"`
	Output remap.Value `json:"output"`
	To     remap.Kind  `json:"to"`
	Frame  string      `json:"frame"`
}

// handleRemap rescales a number between numeric kinds.
func (s *Server) handleRemap(w http.ResponseWriter, r *http.Request) {
	var req remapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.Value == "" {
		writeBadRequest(w, "value is required")
		return
	}
	if !req.From.IsValid() || !req.To.IsValid() {
		writeValidation(w, "from and to must be numeric kinds")
		return
	}

	in, err := remap.ParseValue(req.Value.String(), req.From)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	var out remap.Value
	if req.Range != nil {
		rng, err := remap.NewRange(req.Range.Min, req.Range.Max)
		if err != nil {
			writeValidation(w, err.Error())
			return
		}
		out = rng.ClampMinMaxThenRemap(in, req.To)
	} else {
		out = remap.Remap(in, req.To)
	}

	writeJSON(w, http.StatusOK, remapResponse{
		Input:  in,
		From:   req.From,
		Output: out,
		To:     req.To,
		Frame:  hex.EncodeToString(out.Bytes()),
	})
}

// ─── ANSI to HTML ──────────────────────────────────────────────────

type ansiHTMLRequest struct {
	Text  string `json:"text"`
	Width int    `json:"width,omitempty"`
}

type ansiHTMLResponse struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
	Width int    `json:"width"`
}

// handleANSIHTML renders terminal output as HTML. A positive width
// truncates the text to that many display cells first.
func (s *Server) handleANSIHTML(w http.ResponseWriter, r *http.Request) {
	var req ansiHTMLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Width < 0 {
		writeValidation(w, "width must not be negative")
		return
	}

	html := ansihtml.Convert(req.Text)
	if req.Width > 0 {
		html = ansihtml.Preview(req.Text, req.Width, "…")
	}
	writeJSON(w, http.StatusOK, ansiHTMLResponse{
		HTML:  html,
		Plain: ansihtml.Strip(req.Text),
		Width: ansihtml.Width(req.Text),
	})
}
