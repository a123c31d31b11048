package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/klauern/block-manager/internal/blocks"
	"github.com/klauern/block-manager/internal/constants"
	"github.com/klauern/block-manager/internal/manager"
	"go.uber.org/zap"
)

type SaveSettingsResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	Revision      string    `json:"revision"`
	GlobalCount   int       `json:"global_count"`
	PostTypeCount int       `json:"post_type_count"`
	Timestamp     time.Time `json:"timestamp"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// SaveSettings stores a disable selection. A storage failure does not change the
// response status; the computed counts are returned with a warning.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	sel, err := manager.ParsePayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res, err := h.mgr.Save(r.Context(), sel)
	resp := SaveSettingsResponse{
		Success:       true,
		Message:       "Settings saved successfully!",
		Revision:      res.Revision,
		GlobalCount:   res.GlobalCount,
		PostTypeCount: res.PostTypeCount,
		Timestamp:     res.Timestamp,
	}
	if err != nil {
		resp.Warnings = []string{err.Error()}
	}
	writeJSON(w, http.StatusOK, resp)
}

type StateResponse struct {
	Global blocks.BlockSet `json:"global"`
	ByType blocks.TypeMap  `json:"by_type"`
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.mgr.State(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read settings", err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Global: state.Global, ByType: state.ByType})
}

type NonceResponse struct {
	Nonce  string `json:"nonce"`
	Action string `json:"action"`
	Header string `json:"header"`
}

func (h *Handler) IssueNonce(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	nonce := h.nonces.Create(constants.NonceActionAutoSave, claims.UserID)
	h.log.Debug("issued nonce", zap.String("user", claims.UserID))
	writeJSON(w, http.StatusOK, NonceResponse{
		Nonce:  nonce,
		Action: constants.NonceActionAutoSave,
		Header: NonceHeader,
	})
}
