package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allBlocks = []BlockID{"core/paragraph", "core/heading", "core/list", "core/list-item", "x/custom"}

func TestComputeAllowed(t *testing.T) {
	tests := []struct {
		name   string
		global BlockSet
		byType TypeMap
		ctx    EditorContext
		want   []BlockID
	}{
		{
			name: "nothing disabled, null context",
			ctx:  NoContext,
			want: allBlocks,
		},
		{
			name: "nothing disabled, typed context",
			ctx:  ContextOf("post"),
			want: allBlocks,
		},
		{
			name:   "global disable ignores context",
			global: NewBlockSet("x/custom"),
			ctx:    ContextOf("page"),
			want:   []BlockID{"core/paragraph", "core/heading", "core/list", "core/list-item"},
		},
		{
			name:   "global disable with null context",
			global: NewBlockSet("x/custom"),
			ctx:    NoContext,
			want:   []BlockID{"core/paragraph", "core/heading", "core/list", "core/list-item"},
		},
		{
			name:   "per-type disable matches context",
			byType: TypeMap{"x/custom": NewTypeSet("post")},
			ctx:    ContextOf("post"),
			want:   []BlockID{"core/paragraph", "core/heading", "core/list", "core/list-item"},
		},
		{
			name:   "per-type disable other context",
			byType: TypeMap{"x/custom": NewTypeSet("post")},
			ctx:    ContextOf("page"),
			want:   allBlocks,
		},
		{
			name:   "per-type disable null context",
			byType: TypeMap{"x/custom": NewTypeSet("post")},
			ctx:    NoContext,
			want:   allBlocks,
		},
		{
			name:   "global and per-type combined keep order",
			global: NewBlockSet("core/heading"),
			byType: TypeMap{"core/list": NewTypeSet("template"), "core/list-item": NewTypeSet("template")},
			ctx:    ContextOf(TemplateType),
			want:   []BlockID{"core/paragraph", "x/custom"},
		},
		{
			name:   "unknown disabled ids are harmless",
			global: NewBlockSet("nope/missing"),
			ctx:    NoContext,
			want:   allBlocks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAllowed(allBlocks, tt.global, tt.byType, tt.ctx)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeAllowedFastPathMatchesFullPath(t *testing.T) {
	fast := ComputeAllowed(allBlocks, nil, nil, ContextOf("post"))
	full := ComputeAllowed(allBlocks, NewBlockSet("never/registered"), nil, ContextOf("post"))
	assert.Equal(t, full, fast)

	fast[0] = "mutated/copy"
	assert.Equal(t, BlockID("core/paragraph"), allBlocks[0], "fast path must not alias the input")
}

func TestComputeAllowedEmptyRegistry(t *testing.T) {
	got := ComputeAllowed(nil, NewBlockSet("core/list"), nil, NoContext)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestContextFor(t *testing.T) {
	tests := []struct {
		name    string
		surface *Surface
		want    EditorContext
	}{
		{name: "nil surface", surface: nil, want: NoContext},
		{name: "post editor", surface: &Surface{Name: SurfacePostEditor, PostType: "page"}, want: ContextOf("page")},
		{name: "post editor without post", surface: &Surface{Name: SurfacePostEditor}, want: NoContext},
		{name: "post editor with malformed type", surface: &Surface{Name: SurfacePostEditor, PostType: "Post"}, want: NoContext},
		{name: "site editor", surface: &Surface{Name: SurfaceSiteEditor, PostType: "page"}, want: ContextOf(TemplateType)},
		{name: "widget editor", surface: &Surface{Name: SurfaceWidgetEditor}, want: ContextOf(WidgetType)},
		{name: "unknown surface", surface: &Surface{Name: "core/customize-widgets", PostType: "post"}, want: NoContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContextFor(tt.surface))
		})
	}
}
