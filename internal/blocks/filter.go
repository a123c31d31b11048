package blocks

// Editor surfaces that report an editor context.
const (
	SurfacePostEditor   = "core/edit-post"
	SurfaceSiteEditor   = "core/edit-site"
	SurfaceWidgetEditor = "core/edit-widgets"
)

// EditorContext is the content type the editor is working on. The zero value is the
// null context, where only global disables apply.
type EditorContext struct {
	Type ContentType
}

// NoContext is the null context.
var NoContext = EditorContext{}

// ContextOf returns the context for t.
func ContextOf(t ContentType) EditorContext {
	return EditorContext{Type: t}
}

// IsNull reports whether no content type is known.
func (c EditorContext) IsNull() bool {
	return c.Type == ""
}

func (c EditorContext) String() string {
	if c.IsNull() {
		return "<none>"
	}
	return string(c.Type)
}

// Surface identifies the editing screen asking for its allowed blocks. PostType is
// set only when a post is being edited.
type Surface struct {
	Name     string
	PostType ContentType
}

// ContextFor derives the editor context for a surface. Unknown surfaces, and the post
// editor without a valid post type, yield the null context.
func ContextFor(s *Surface) EditorContext {
	if s == nil {
		return NoContext
	}
	switch s.Name {
	case SurfacePostEditor:
		if !s.PostType.Valid() {
			return NoContext
		}
		return ContextOf(s.PostType)
	case SurfaceSiteEditor:
		return ContextOf(TemplateType)
	case SurfaceWidgetEditor:
		return ContextOf(WidgetType)
	default:
		return NoContext
	}
}

// Disabled reports whether id is disabled globally or for the context's type.
func Disabled(id BlockID, global BlockSet, byType TypeMap, ctx EditorContext) bool {
	if global.Has(id) {
		return true
	}
	if ctx.IsNull() {
		return false
	}
	return byType[id].Has(ctx.Type)
}

// ComputeAllowed returns the members of all that are not disabled, in input order.
// It never fails: with nothing disabled, every block is allowed.
func ComputeAllowed(all []BlockID, global BlockSet, byType TypeMap, ctx EditorContext) []BlockID {
	out := make([]BlockID, 0, len(all))
	if len(global) == 0 && len(byType) == 0 {
		return append(out, all...)
	}
	for _, id := range all {
		if Disabled(id, global, byType, ctx) {
			continue
		}
		out = append(out, id)
	}
	return out
}
