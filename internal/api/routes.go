// Package api provides the HTTP API for block settings and allowed-block queries.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/klauern/block-manager/internal/auth"
	"github.com/klauern/block-manager/internal/constants"
	"github.com/klauern/block-manager/internal/manager"
	"github.com/klauern/block-manager/internal/store"
	"go.uber.org/zap"
)

// Options tunes a Handler.
type Options struct {
	Version      string
	MaxBodyBytes int64
	// ContentTypes are the public post types offered for per-type disabling.
	ContentTypes []string
}

// Handler wraps dependencies for HTTP handlers.
type Handler struct {
	mgr    *manager.Manager
	store  store.Store
	tokens *auth.TokenService
	nonces *auth.NonceService
	log    *zap.Logger
	opts   Options
}

// NewHandler creates a new API handler.
func NewHandler(mgr *manager.Manager, st store.Store, tokens *auth.TokenService, nonces *auth.NonceService, logger *zap.Logger, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		mgr:    mgr,
		store:  st,
		tokens: tokens,
		nonces: nonces,
		log:    logger,
		opts:   opts,
	}
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /readyz", h.Ready)

	// Editor queries (public)
	mux.HandleFunc("GET /api/v1/allowed", h.GetAllowed)
	mux.HandleFunc("GET /api/v1/blocks", h.ListBlocks)
	mux.HandleFunc("GET /api/v1/hierarchy", h.GetHierarchy)

	// Settings (authenticated)
	manage := RequireCapability(constants.CapabilityManage)
	mux.Handle("GET /api/v1/state", Chain(http.HandlerFunc(h.GetState), h.WithAuth, manage))
	mux.Handle("GET /api/v1/nonce", Chain(http.HandlerFunc(h.IssueNonce), h.WithAuth, manage))
	mux.Handle("POST /api/v1/settings", Chain(http.HandlerFunc(h.SaveSettings), h.WithAuth, manage, h.RequireNonce))

	return mux
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.opts.Version,
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	// Only stores backed by a connection can be pinged
	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.log.Warn("readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not ready",
				Version: h.opts.Version,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ready",
		Version: h.opts.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
