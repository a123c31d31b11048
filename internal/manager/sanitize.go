package manager

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauern/block-manager/internal/blocks"
)

// Selection is a disable selection as submitted by the settings screen, before
// sanitizing and expansion.
type Selection struct {
	Global []string            `json:"global"`
	ByType map[string][]string `json:"by_type"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ParsePayload decodes a save request body. Only a body that is not a JSON object
// is an error; entries of the wrong shape are dropped. The field names of the
// legacy settings form (disabled_blocks_global, disabled_blocks_by_post_type)
// are accepted as well.
func ParsePayload(data []byte) (Selection, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Selection{}, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	var sel Selection
	for _, key := range []string{"global", "disabled_blocks_global"} {
		sel.Global = append(sel.Global, stringList(raw[key])...)
	}
	for _, key := range []string{"by_type", "disabled_blocks_by_post_type"} {
		m, ok := raw[key].(map[string]any)
		if !ok {
			continue
		}
		if sel.ByType == nil {
			sel.ByType = make(map[string][]string, len(m))
		}
		for block, types := range m {
			sel.ByType[block] = append(sel.ByType[block], stringList(types)...)
		}
	}
	return sel, nil
}

// stringList keeps the string members of a JSON array; a lone string becomes a
// one-element list.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// cleanText strips tags and control characters and collapses whitespace.
func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Sanitizer turns a raw Selection into typed sets. Invalid identifiers and content
// types are dropped. Glob patterns such as "woocommerce/*" are expanded against the
// registered block names.
type Sanitizer struct {
	Names []blocks.BlockID
}

// Global returns the sanitized global selection.
func (s Sanitizer) Global(raw []string) blocks.BlockSet {
	out := blocks.BlockSet{}
	for _, entry := range raw {
		out.Add(s.resolve(entry)...)
	}
	return out
}

// ByType returns the sanitized per-type selection. Blocks left with no valid type
// are dropped.
func (s Sanitizer) ByType(raw map[string][]string) blocks.TypeMap {
	out := blocks.TypeMap{}
	for block, rawTypes := range raw {
		types := blocks.TypeSet{}
		for _, t := range rawTypes {
			ct := blocks.ContentType(strings.ToLower(cleanText(t)))
			if ct.Valid() {
				types.Add(ct)
			}
		}
		if len(types) == 0 {
			continue
		}
		for _, id := range s.resolve(block) {
			out.Union(id, types)
		}
	}
	return out
}

func (s Sanitizer) resolve(entry string) []blocks.BlockID {
	entry = cleanText(entry)
	if entry == "" {
		return nil
	}
	if strings.ContainsAny(entry, "*?[{") {
		if !doublestar.ValidatePattern(entry) {
			return nil
		}
		var out []blocks.BlockID
		for _, name := range s.Names {
			if ok, _ := doublestar.Match(entry, string(name)); ok {
				out = append(out, name)
			}
		}
		return out
	}
	id := blocks.BlockID(entry)
	if !id.Valid() {
		return nil
	}
	return []blocks.BlockID{id}
}
