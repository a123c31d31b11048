package blocks

import "sort"

// HierarchyMap maps a container block to the blocks that only make sense inside it.
type HierarchyMap map[BlockID][]BlockID

// Snapshot answers whether a block is registered. The registry satisfies it.
type Snapshot interface {
	Exists(id BlockID) bool
}

// PluginFamily describes a third-party block family whose children are added to the
// hierarchy only when its signature block is registered.
type PluginFamily struct {
	Name      string
	Signature BlockID
	Parent    BlockID
	Children  []BlockID
}

// PluginFamilies are the third-party families detected by ResolveHierarchy.
var PluginFamilies = []PluginFamily{
	{
		Name:      "woocommerce",
		Signature: "woocommerce/product-price",
		Parent:    "woocommerce/all-products",
		Children: []BlockID{
			"woocommerce/product-price",
			"woocommerce/product-image",
			"woocommerce/product-title",
		},
	},
	{
		Name:      "jetpack",
		Signature: "jetpack/contact-form",
		Parent:    "jetpack/contact-form",
		Children: []BlockID{
			"jetpack/field-text",
			"jetpack/field-email",
			"jetpack/field-textarea",
			"jetpack/field-checkbox",
			"jetpack/field-select",
		},
	},
	{
		Name:      "kadence",
		Signature: "kadence/accordion",
		Parent:    "kadence/accordion",
		Children:  []BlockID{"kadence/pane"},
	},
	{
		Name:      "genesis-blocks",
		Signature: "genesis-blocks/gb-columns",
		Parent:    "genesis-blocks/gb-columns",
		Children:  []BlockID{"genesis-blocks/gb-column"},
	},
}

// CoreHierarchy returns a fresh copy of the hand-maintained core table.
func CoreHierarchy() HierarchyMap {
	return HierarchyMap{
		"core/buttons":      {"core/button"},
		"core/columns":      {"core/column"},
		"core/list":         {"core/list-item"},
		"core/social-links": {"core/social-link"},
		"core/navigation":   {"core/navigation-link", "core/navigation-submenu"},
		"core/page-list":    {"core/page-list-item"},
		"core/comments": {
			"core/comment-author-name",
			"core/comment-content",
			"core/comment-date",
			"core/comment-edit-link",
			"core/comment-reply-link",
			"core/comment-template",
		},
		"core/comments-pagination": {
			"core/comments-pagination-next",
			"core/comments-pagination-numbers",
			"core/comments-pagination-previous",
		},
		"core/query": {
			"core/post-template",
			"core/query-pagination",
			"core/query-no-results",
			"core/query-title",
		},
		"core/query-pagination": {
			"core/query-pagination-next",
			"core/query-pagination-numbers",
			"core/query-pagination-previous",
		},
		"core/post-template": {
			"core/post-title",
			"core/post-content",
			"core/post-excerpt",
			"core/post-date",
			"core/post-author",
			"core/post-featured-image",
			"core/post-terms",
			"core/post-comments-count",
			"core/post-comments-link",
			"core/post-comments-form",
		},
		"core/post-author": {
			"core/post-author-name",
			"core/post-author-biography",
			"core/avatar",
		},
		"core/accordion": {
			"core/accordion-item",
			"core/accordion-heading",
			"core/accordion-panel",
		},
		"core/terms-query": {
			"core/term-template",
			"core/term-name",
			"core/term-description",
			"core/term-count",
		},
	}
}

// PluginHierarchy builds the table for every family whose signature block exists in snap.
// Families sharing a parent are unioned. A nil snapshot detects nothing.
func PluginHierarchy(snap Snapshot, families []PluginFamily) HierarchyMap {
	out := HierarchyMap{}
	if snap == nil {
		return out
	}
	for _, fam := range families {
		if !snap.Exists(fam.Signature) {
			continue
		}
		out.add(fam.Parent, fam.Children...)
	}
	return out
}

// ResolveHierarchy merges the core table, the detected plugin table and any extra tables.
func ResolveHierarchy(snap Snapshot, extra ...HierarchyMap) HierarchyMap {
	tables := make([]HierarchyMap, 0, 2+len(extra))
	tables = append(tables, CoreHierarchy(), PluginHierarchy(snap, PluginFamilies))
	tables = append(tables, extra...)
	return MergeHierarchies(tables...)
}

// MergeHierarchies unions tables. Children keep the order of the first table that lists
// them; later tables only append children not seen yet. Self-loops are dropped.
func MergeHierarchies(tables ...HierarchyMap) HierarchyMap {
	out := HierarchyMap{}
	for _, table := range tables {
		for _, parent := range table.Parents() {
			out.add(parent, table[parent]...)
		}
	}
	return out
}

func (h HierarchyMap) add(parent BlockID, children ...BlockID) {
	if parent == "" {
		return
	}
	existing := h[parent]
	for _, child := range children {
		if child == "" || child == parent || containsID(existing, child) {
			continue
		}
		existing = append(existing, child)
	}
	if len(existing) > 0 {
		h[parent] = existing
	}
}

// Children returns the children of id, or nil.
func (h HierarchyMap) Children(id BlockID) []BlockID {
	return h[id]
}

// IsParent reports whether id has children.
func (h HierarchyMap) IsParent(id BlockID) bool {
	return len(h[id]) > 0
}

// Parents returns every parent key in lexical order.
func (h HierarchyMap) Parents() []BlockID {
	out := make([]BlockID, 0, len(h))
	for id := range h {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParentOf returns the first parent (in lexical order) that lists child.
func (h HierarchyMap) ParentOf(child BlockID) (BlockID, bool) {
	for _, parent := range h.Parents() {
		if containsID(h[parent], child) {
			return parent, true
		}
	}
	return "", false
}

func containsID(ids []BlockID, id BlockID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
