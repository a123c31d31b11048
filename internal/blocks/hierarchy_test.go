package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshot map[BlockID]bool

func (f fakeSnapshot) Exists(id BlockID) bool { return f[id] }

func TestCoreHierarchyHasNoSelfLoops(t *testing.T) {
	for parent, children := range CoreHierarchy() {
		assert.NotContains(t, children, parent, "parent %s lists itself", parent)
	}
}

func TestCoreHierarchyIsFreshCopy(t *testing.T) {
	h := CoreHierarchy()
	h["core/list"] = append(h["core/list"], "core/paragraph")
	assert.Equal(t, []BlockID{"core/list-item"}, CoreHierarchy()["core/list"])
}

func TestPluginHierarchyDetection(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     HierarchyMap
	}{
		{
			name:     "nil snapshot detects nothing",
			snapshot: nil,
			want:     HierarchyMap{},
		},
		{
			name:     "no signatures registered",
			snapshot: fakeSnapshot{"core/paragraph": true},
			want:     HierarchyMap{},
		},
		{
			name:     "kadence only",
			snapshot: fakeSnapshot{"kadence/accordion": true},
			want:     HierarchyMap{"kadence/accordion": {"kadence/pane"}},
		},
		{
			name:     "woocommerce keyed on selectable parent",
			snapshot: fakeSnapshot{"woocommerce/product-price": true},
			want: HierarchyMap{"woocommerce/all-products": {
				"woocommerce/product-price",
				"woocommerce/product-image",
				"woocommerce/product-title",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PluginHierarchy(tt.snapshot, PluginFamilies)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPluginFamiliesSharingParentAreUnioned(t *testing.T) {
	families := []PluginFamily{
		{Name: "a", Signature: "acme/a", Parent: "acme/form", Children: []BlockID{"acme/text", "acme/email"}},
		{Name: "b", Signature: "acme/b", Parent: "acme/form", Children: []BlockID{"acme/email", "acme/phone"}},
	}
	got := PluginHierarchy(fakeSnapshot{"acme/a": true, "acme/b": true}, families)
	assert.Equal(t, []BlockID{"acme/text", "acme/email", "acme/phone"}, got["acme/form"])
}

func TestMergeHierarchiesUnionsDuplicateParents(t *testing.T) {
	a := HierarchyMap{"x/parent": {"x/one", "x/two"}}
	b := HierarchyMap{"x/parent": {"x/two", "x/three"}, "y/parent": {"y/child"}}

	merged := MergeHierarchies(a, b)

	require.Len(t, merged, 2)
	assert.Equal(t, []BlockID{"x/one", "x/two", "x/three"}, merged["x/parent"])
	assert.Equal(t, []BlockID{"y/child"}, merged["y/parent"])

	// no child from either source may be lost
	for _, src := range []HierarchyMap{a, b} {
		for parent, children := range src {
			for _, child := range children {
				assert.Contains(t, merged[parent], child)
			}
		}
	}
}

func TestMergeHierarchiesDropsSelfLoops(t *testing.T) {
	merged := MergeHierarchies(HierarchyMap{"x/p": {"x/p", "x/c"}, "x/lonely": {"x/lonely"}})
	assert.Equal(t, []BlockID{"x/c"}, merged["x/p"])
	_, ok := merged["x/lonely"]
	assert.False(t, ok)
}

func TestResolveHierarchy(t *testing.T) {
	extra := HierarchyMap{"core/list": {"acme/fancy-item"}}
	h := ResolveHierarchy(fakeSnapshot{"jetpack/contact-form": true}, extra)

	assert.Equal(t, []BlockID{"core/list-item", "acme/fancy-item"}, h["core/list"])
	assert.Len(t, h["jetpack/contact-form"], 5)
	assert.NotContains(t, h, BlockID("kadence/accordion"))
	assert.Equal(t, CoreHierarchy()["core/navigation"], h["core/navigation"])
}

func TestParentOf(t *testing.T) {
	h := CoreHierarchy()

	parent, ok := h.ParentOf("core/button")
	require.True(t, ok)
	assert.Equal(t, BlockID("core/buttons"), parent)

	// post-author is both a parent and a child of post-template
	parent, ok = h.ParentOf("core/post-author")
	require.True(t, ok)
	assert.Equal(t, BlockID("core/post-template"), parent)

	_, ok = h.ParentOf("core/paragraph")
	assert.False(t, ok)
}
