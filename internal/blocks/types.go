// Package blocks holds the block hierarchy, the expansion of disable selections
// and the filter that decides which blocks the editor may offer.
package blocks

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// BlockID is a namespace-qualified block name such as "core/list".
type BlockID string

// ContentType is a post type name, or one of the pseudo-types for the site and widget editors.
type ContentType string

const (
	// TemplateType is reported by the site template editor.
	TemplateType ContentType = "template"
	// WidgetType is reported by the widget editor.
	WidgetType ContentType = "widget"
)

var (
	blockIDPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*/[a-z0-9][a-z0-9_-]*$`)
	contentTypePattern = regexp.MustCompile(`^[a-z0-9_-]{1,20}$`)
)

// Valid reports whether id has the namespace/name shape.
func (id BlockID) Valid() bool {
	return blockIDPattern.MatchString(string(id))
}

// Namespace returns the part before the slash, or "" if there is none.
func (id BlockID) Namespace() string {
	ns, _, ok := strings.Cut(string(id), "/")
	if !ok {
		return ""
	}
	return ns
}

// Name returns the part after the slash, or the whole id if there is no slash.
func (id BlockID) Name() string {
	_, name, ok := strings.Cut(string(id), "/")
	if !ok {
		return string(id)
	}
	return name
}

// Valid reports whether t looks like a post type key.
func (t ContentType) Valid() bool {
	return contentTypePattern.MatchString(string(t))
}

// SelectableTypes returns the valid public types followed by the template and widget
// pseudo-types, without duplicates.
func SelectableTypes(public []string) []ContentType {
	seen := TypeSet{}
	out := make([]ContentType, 0, len(public)+2)
	for _, p := range public {
		t := ContentType(strings.ToLower(strings.TrimSpace(p)))
		if !t.Valid() || seen.Has(t) {
			continue
		}
		seen.Add(t)
		out = append(out, t)
	}
	for _, t := range []ContentType{TemplateType, WidgetType} {
		if !seen.Has(t) {
			seen.Add(t)
			out = append(out, t)
		}
	}
	return out
}

// BlockSet is an unordered set of block identifiers.
// It encodes to JSON as a sorted array.
type BlockSet map[BlockID]struct{}

// NewBlockSet returns a set holding ids.
func NewBlockSet(ids ...BlockID) BlockSet {
	s := make(BlockSet, len(ids))
	s.Add(ids...)
	return s
}

// Add inserts ids, skipping empty ones.
func (s BlockSet) Add(ids ...BlockID) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
}

// Has reports membership.
func (s BlockSet) Has(id BlockID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s BlockSet) Sorted() []BlockID {
	out := make([]BlockID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (s BlockSet) Clone() BlockSet {
	out := make(BlockSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s BlockSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *BlockSet) UnmarshalJSON(data []byte) error {
	var ids []BlockID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewBlockSet(ids...)
	return nil
}

// TypeSet is an unordered set of content types, encoded as a sorted JSON array.
type TypeSet map[ContentType]struct{}

// NewTypeSet returns a set holding types.
func NewTypeSet(types ...ContentType) TypeSet {
	s := make(TypeSet, len(types))
	s.Add(types...)
	return s
}

// Add inserts types, skipping empty ones.
func (s TypeSet) Add(types ...ContentType) {
	for _, t := range types {
		if t == "" {
			continue
		}
		s[t] = struct{}{}
	}
}

// Has reports membership.
func (s TypeSet) Has(t ContentType) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members in lexical order.
func (s TypeSet) Sorted() []ContentType {
	out := make([]ContentType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s TypeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *TypeSet) UnmarshalJSON(data []byte) error {
	var types []ContentType
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}
	*s = NewTypeSet(types...)
	return nil
}

// TypeMap records, per block, the content types it is disabled for.
type TypeMap map[BlockID]TypeSet

// Union adds types to the entry for id, creating it when absent.
func (m TypeMap) Union(id BlockID, types TypeSet) {
	if id == "" || len(types) == 0 {
		return
	}
	entry, ok := m[id]
	if !ok {
		entry = make(TypeSet, len(types))
		m[id] = entry
	}
	for t := range types {
		entry.Add(t)
	}
}

// Types returns the sorted content types recorded for id.
func (m TypeMap) Types(id BlockID) []ContentType {
	return m[id].Sorted()
}

// Clone returns a deep copy.
func (m TypeMap) Clone() TypeMap {
	out := make(TypeMap, len(m))
	for id, types := range m {
		out.Union(id, types)
	}
	return out
}
