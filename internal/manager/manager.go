// Package manager ties the block engines to the option store and the registry. A
// Manager is built once at start-up and shared by every transport.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauern/block-manager/internal/blocks"
	"github.com/klauern/block-manager/internal/constants"
	"github.com/klauern/block-manager/internal/registry"
	"github.com/klauern/block-manager/internal/store"
	"go.uber.org/zap"
)

// Config holds the collaborators of a Manager.
type Config struct {
	Store    store.Store
	Registry *registry.Registry
	Logger   *zap.Logger
	// Transitive makes expansion follow children that are themselves parents.
	Transitive bool
	// Now is used for timestamps; time.Now when nil.
	Now func() time.Time
}

// Manager saves disable selections and answers allowed-block queries.
type Manager struct {
	store      store.Store
	registry   *registry.Registry
	log        *zap.Logger
	transitive bool
	now        func() time.Time
}

// State is the persisted disable configuration.
type State struct {
	Global blocks.BlockSet `json:"global"`
	ByType blocks.TypeMap  `json:"by_type"`
}

// SaveResult reports what a save computed. Counts describe the expanded selection,
// whether or not the store acknowledged both writes; Err carries any write failures.
type SaveResult struct {
	Revision      string    `json:"revision"`
	GlobalCount   int       `json:"global_count"`
	PostTypeCount int       `json:"post_type_count"`
	Timestamp     time.Time `json:"timestamp"`
	Err           error     `json:"-"`
}

// New creates a Manager. Store and Registry are required.
func New(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:      cfg.Store,
		registry:   cfg.Registry,
		log:        logger,
		transitive: cfg.Transitive,
		now:        now,
	}
}

// Registry returns the block registry.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Hierarchy resolves the parent/child table against the current registrations.
func (m *Manager) Hierarchy() blocks.HierarchyMap {
	return m.registry.Hierarchy()
}

func (m *Manager) expander() blocks.Expander {
	return blocks.Expander{Hierarchy: m.Hierarchy(), Transitive: m.transitive}
}

// Save sanitizes and expands sel, then writes both option keys. A failed write does
// not prevent the other one and nothing is rolled back. The returned error is the
// same as SaveResult.Err.
func (m *Manager) Save(ctx context.Context, sel Selection) (SaveResult, error) {
	san := Sanitizer{Names: m.registry.Names()}
	exp := m.expander()

	global := exp.ExpandGlobal(san.Global(sel.Global))
	byType := exp.ExpandByType(san.ByType(sel.ByType))

	res := SaveResult{
		Revision:      uuid.NewString(),
		GlobalCount:   len(global),
		PostTypeCount: len(byType),
		Timestamp:     m.now(),
	}

	var errs []error
	if err := m.put(ctx, constants.OptionDisabledGlobal, global); err != nil {
		errs = append(errs, err)
	}
	if err := m.put(ctx, constants.OptionDisabledByType, byType); err != nil {
		errs = append(errs, err)
	}
	res.Err = errors.Join(errs...)

	fields := []zap.Field{
		zap.String("revision", res.Revision),
		zap.Int("global_count", res.GlobalCount),
		zap.Int("post_type_count", res.PostTypeCount),
	}
	if res.Err != nil {
		m.log.Error("saving block settings", append(fields, zap.Error(res.Err))...)
	} else {
		m.log.Info("block settings saved", fields...)
	}
	return res, res.Err
}

// Allowed returns the registered blocks the editor may offer in ec. Unreadable
// state is logged and treated as nothing disabled.
func (m *Manager) Allowed(ctx context.Context, ec blocks.EditorContext) []blocks.BlockID {
	state, err := m.State(ctx)
	if err != nil {
		m.log.Warn("reading block settings, allowing all blocks", zap.Error(err))
	}

	all := m.registry.Names()
	allowed := blocks.ComputeAllowed(all, state.Global, state.ByType, ec)

	if ce := m.log.Check(zap.DebugLevel, "filtered allowed blocks"); ce != nil {
		ce.Write(
			zap.Stringer("context", ec),
			zap.Int("allowed", len(allowed)),
			zap.Int("registered", len(all)),
			zap.Int("disabled_global", len(state.Global)),
			zap.Int("disabled_by_type", len(state.ByType)),
		)
	}
	return allowed
}

// AllowedFor derives the editor context from a surface and calls Allowed.
func (m *Manager) AllowedFor(ctx context.Context, s *blocks.Surface) []blocks.BlockID {
	return m.Allowed(ctx, blocks.ContextFor(s))
}

// State loads both option keys. A missing key reads as empty. When one key fails to
// load the other is still returned along with the error.
func (m *Manager) State(ctx context.Context) (State, error) {
	state := State{Global: blocks.BlockSet{}, ByType: blocks.TypeMap{}}
	var errs []error
	if err := m.get(ctx, constants.OptionDisabledGlobal, &state.Global); err != nil {
		errs = append(errs, err)
	}
	if err := m.get(ctx, constants.OptionDisabledByType, &state.ByType); err != nil {
		errs = append(errs, err)
	}
	if state.Global == nil {
		state.Global = blocks.BlockSet{}
	}
	if state.ByType == nil {
		state.ByType = blocks.TypeMap{}
	}
	return state, errors.Join(errs...)
}

// DisabledTypesFor returns the content types id is disabled for, sorted.
func (m *Manager) DisabledTypesFor(ctx context.Context, id blocks.BlockID) ([]blocks.ContentType, error) {
	state, err := m.State(ctx)
	if err != nil {
		return nil, err
	}
	return state.ByType.Types(id), nil
}

// Activate creates both option keys when they are missing and records the
// activation time.
func (m *Manager) Activate(ctx context.Context) error {
	defaults := map[string]any{
		constants.OptionDisabledGlobal: blocks.BlockSet{},
		constants.OptionDisabledByType: blocks.TypeMap{},
	}
	for _, key := range []string{constants.OptionDisabledGlobal, constants.OptionDisabledByType} {
		_, err := m.store.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("checking option %s: %w", key, err)
		}
		if err := m.put(ctx, key, defaults[key]); err != nil {
			return err
		}
	}
	if err := m.put(ctx, constants.OptionPluginActivated, m.now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	m.log.Info("block manager activated")
	return nil
}

// ActivatedAt returns when Activate last ran.
func (m *Manager) ActivatedAt(ctx context.Context) (time.Time, error) {
	var stamp string
	raw, err := m.store.Get(ctx, constants.OptionPluginActivated)
	if err != nil {
		return time.Time{}, err
	}
	if err := json.Unmarshal(raw, &stamp); err != nil {
		return time.Time{}, fmt.Errorf("decoding activation time: %w", err)
	}
	return time.Parse(time.RFC3339, stamp)
}

// Deactivate removes every option the manager owns. All deletes are attempted.
func (m *Manager) Deactivate(ctx context.Context) error {
	var errs []error
	for _, key := range []string{
		constants.OptionDisabledGlobal,
		constants.OptionDisabledByType,
		constants.OptionPluginActivated,
	} {
		if err := m.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("deleting option %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Uninstall is Deactivate followed by a cleanup log entry.
func (m *Manager) Uninstall(ctx context.Context) error {
	if err := m.Deactivate(ctx); err != nil {
		return err
	}
	m.log.Info("uninstall cleanup completed, all options removed")
	return nil
}

func (m *Manager) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding option %s: %w", key, err)
	}
	if err := m.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing option %s: %w", key, err)
	}
	return nil
}

func (m *Manager) get(ctx context.Context, key string, v any) error {
	data, err := m.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading option %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding option %s: %w", key, err)
	}
	return nil
}
