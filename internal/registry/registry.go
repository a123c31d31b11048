// Package registry holds the catalog of known block types.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/klauern/block-manager/internal/blocks"
	yaml "gopkg.in/yaml.v3"
)

//go:embed default_blocks.yml
var defaultCatalog []byte

// ErrDuplicate is returned when a block name is registered twice.
var ErrDuplicate = errors.New("block already registered")

// Catalog is the on-disk shape of a block catalog file.
type Catalog struct {
	Blocks    []blocks.BlockType                  `yaml:"blocks"`
	Hierarchy map[blocks.BlockID][]blocks.BlockID `yaml:"hierarchy,omitempty"`
}

// Registry manages block registration and lookup. Names are kept in registration order.
type Registry struct {
	mu        sync.RWMutex
	types     map[blocks.BlockID]blocks.BlockType
	order     []blocks.BlockID
	hierarchy blocks.HierarchyMap
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		types:     make(map[blocks.BlockID]blocks.BlockType),
		hierarchy: blocks.HierarchyMap{},
	}
}

// Register adds a block type
func (r *Registry) Register(bt blocks.BlockType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(bt)
}

func (r *Registry) registerLocked(bt blocks.BlockType) error {
	if bt.Name == "" {
		return fmt.Errorf("block type has no name")
	}
	if _, exists := r.types[bt.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, bt.Name)
	}
	r.types[bt.Name] = bt
	r.order = append(r.order, bt.Name)
	return nil
}

// MustRegister is like Register but panics on error (used by tests)
func (r *Registry) MustRegister(bt blocks.BlockType) {
	if err := r.Register(bt); err != nil {
		panic(err)
	}
}

// RegisterBatch registers all types or none.
func (r *Registry) RegisterBatch(types []blocks.BlockType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[blocks.BlockID]bool, len(types))
	for _, bt := range types {
		if _, exists := r.types[bt.Name]; exists || seen[bt.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicate, bt.Name)
		}
		seen[bt.Name] = true
	}
	for _, bt := range types {
		if err := r.registerLocked(bt); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether a block is registered. It satisfies blocks.Snapshot.
func (r *Registry) Exists(id blocks.BlockID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[id]
	return ok
}

// Get returns a registered block type.
func (r *Registry) Get(id blocks.BlockID) (blocks.BlockType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bt, ok := r.types[id]
	return bt, ok
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []blocks.BlockID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]blocks.BlockID(nil), r.order...)
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []blocks.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]blocks.BlockType, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.types[id])
	}
	return out
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// AddHierarchy merges extra parent/child relationships declared by a catalog.
func (r *Registry) AddHierarchy(h blocks.HierarchyMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hierarchy = blocks.MergeHierarchies(r.hierarchy, h)
}

// Hierarchy returns the merged core, plugin and catalog relationships for the
// current registrations.
func (r *Registry) Hierarchy() blocks.HierarchyMap {
	r.mu.RLock()
	extra := blocks.MergeHierarchies(r.hierarchy)
	r.mu.RUnlock()
	return blocks.ResolveHierarchy(r, extra)
}

// Load registers the blocks and hierarchy of a parsed catalog.
func (r *Registry) Load(c *Catalog) error {
	if err := r.RegisterBatch(c.Blocks); err != nil {
		return err
	}
	if len(c.Hierarchy) > 0 {
		r.AddHierarchy(blocks.HierarchyMap(c.Hierarchy))
	}
	return nil
}

// ParseCatalog decodes YAML catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return &c, nil
}

// LoadFile builds a registry from a catalog file. An empty path loads the built-in
// catalog of core blocks.
func LoadFile(path string) (*Registry, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path) // #nosec G304 - path comes from operator configuration
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	c, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	r := New()
	if err := r.Load(c); err != nil {
		return nil, err
	}
	return r, nil
}

// Default returns a registry holding the built-in catalog.
func Default() *Registry {
	r, err := LoadFile("")
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return r
}
