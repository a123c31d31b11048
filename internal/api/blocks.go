package api

import (
	"net/http"
	"strconv"

	"github.com/klauern/block-manager/internal/blocks"
	"go.uber.org/zap"
)

type AllowedResponse struct {
	Context string           `json:"context"`
	Allowed []blocks.BlockID `json:"allowed"`
	Count   int              `json:"count"`
}

// GetAllowed returns the allowed blocks for an editor surface. A post_type without
// a surface is taken as the post editor. A malformed post_type falls back to the
// null context, leaving only global disables in effect.
func (h *Handler) GetAllowed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	postType := blocks.ContentType(q.Get("post_type"))

	surface := &blocks.Surface{Name: q.Get("surface"), PostType: postType}
	if surface.Name == "" && postType != "" {
		surface.Name = blocks.SurfacePostEditor
	}

	ec := blocks.ContextFor(surface)
	if postType != "" && !postType.Valid() {
		h.log.Debug("ignoring malformed post_type", zap.String("post_type", string(postType)))
	}
	allowed := h.mgr.Allowed(r.Context(), ec)
	writeJSON(w, http.StatusOK, AllowedResponse{
		Context: ec.String(),
		Allowed: allowed,
		Count:   len(allowed),
	})
}

type BlocksResponse struct {
	Blocks       []blocks.Entry       `json:"blocks"`
	Total        int                  `json:"total"`
	ContentTypes []blocks.ContentType `json:"content_types"`
}

// ListBlocks returns the settings catalog. Child blocks are left out unless all is set.
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	entries := blocks.BuildCatalog(h.mgr.Registry().Types(), h.mgr.Hierarchy())
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); !all {
		entries = blocks.TopLevel(entries)
	}
	writeJSON(w, http.StatusOK, BlocksResponse{
		Blocks:       entries,
		Total:        len(entries),
		ContentTypes: blocks.SelectableTypes(h.opts.ContentTypes),
	})
}

type HierarchyResponse struct {
	Hierarchy blocks.HierarchyMap `json:"hierarchy"`
	Parents   []blocks.BlockID    `json:"parents"`
}

func (h *Handler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	hier := h.mgr.Hierarchy()
	writeJSON(w, http.StatusOK, HierarchyResponse{Hierarchy: hier, Parents: hier.Parents()})
}
