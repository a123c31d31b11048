package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klauern/block-manager/internal/blocks"
	"github.com/klauern/block-manager/internal/constants"
	"github.com/klauern/block-manager/internal/registry"
	"github.com/klauern/block-manager/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore wraps a store and fails writes to selected keys.
type failingStore struct {
	store.Store
	failSet map[string]bool
	failGet map[string]bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet[key] {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet[key] {
		return nil, errors.New("connection reset")
	}
	return f.Store.Get(ctx, key)
}

func newTestManager(t *testing.T, st store.Store) *Manager {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.RegisterBatch([]blocks.BlockType{
		{Name: "core/paragraph"},
		{Name: "core/buttons"},
		{Name: "core/button"},
		{Name: "core/navigation"},
		{Name: "core/navigation-link"},
		{Name: "core/navigation-submenu"},
		{Name: "woocommerce/product-price"},
		{Name: "woocommerce/product-image"},
	}))
	fixed := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	return New(Config{Store: st, Registry: reg, Now: func() time.Time { return fixed }})
}

func TestSaveExpandsGlobalSelection(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemory())

	res, err := m.Save(ctx, Selection{Global: []string{"core/buttons"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.GlobalCount)
	assert.Equal(t, 0, res.PostTypeCount)
	assert.NotEmpty(t, res.Revision)

	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, blocks.NewBlockSet("core/buttons", "core/button"), state.Global)
	assert.Empty(t, state.ByType)
}

func TestSaveExpandsByTypeSelection(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemory())

	res, err := m.Save(ctx, Selection{ByType: map[string][]string{"core/navigation": {"page"}}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.PostTypeCount)

	state, err := m.State(ctx)
	require.NoError(t, err)
	for _, id := range []blocks.BlockID{"core/navigation", "core/navigation-link", "core/navigation-submenu"} {
		assert.Equal(t, blocks.NewTypeSet("page"), state.ByType[id], id)
	}
}

func TestSaveDropsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemory())

	res, err := m.Save(ctx, Selection{
		Global: []string{"", "   ", "not an id", "<b>core/paragraph</b>"},
		ByType: map[string][]string{
			"core/buttons": {"Bad Type!", ""},
			"":             {"post"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.GlobalCount)
	assert.Equal(t, 0, res.PostTypeCount)

	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, blocks.NewBlockSet("core/paragraph"), state.Global)
}

func TestSaveExpandsGlobPatterns(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemory())

	_, err := m.Save(ctx, Selection{Global: []string{"woocommerce/*"}})
	require.NoError(t, err)

	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, blocks.NewBlockSet("woocommerce/product-price", "woocommerce/product-image"), state.Global)
}

func TestSaveReportsCountsDespiteWriteFailure(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Store: store.NewMemory(), failSet: map[string]bool{constants.OptionDisabledGlobal: true}}
	m := newTestManager(t, st)

	res, err := m.Save(ctx, Selection{
		Global: []string{"core/buttons"},
		ByType: map[string][]string{"core/paragraph": {"post"}},
	})
	require.Error(t, err)
	assert.Equal(t, err, res.Err)
	assert.Equal(t, 2, res.GlobalCount)
	assert.Equal(t, 1, res.PostTypeCount)

	// the by-type key was still written
	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Global)
	assert.Equal(t, blocks.NewTypeSet("post"), state.ByType["core/paragraph"])
}

func TestAllowed(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemory())

	all := m.Registry().Names()
	assert.Equal(t, all, m.Allowed(ctx, blocks.NoContext), "nothing saved yet")

	_, err := m.Save(ctx, Selection{
		Global: []string{"core/buttons"},
		ByType: map[string][]string{"core/paragraph": {"post"}},
	})
	require.NoError(t, err)

	post := m.AllowedFor(ctx, &blocks.Surface{Name: blocks.SurfacePostEditor, PostType: "post"})
	assert.NotContains(t, post, blocks.BlockID("core/buttons"))
	assert.NotContains(t, post, blocks.BlockID("core/button"))
	assert.NotContains(t, post, blocks.BlockID("core/paragraph"))

	page := m.AllowedFor(ctx, &blocks.Surface{Name: blocks.SurfacePostEditor, PostType: "page"})
	assert.Contains(t, page, blocks.BlockID("core/paragraph"))
	assert.NotContains(t, page, blocks.BlockID("core/button"))

	none := m.Allowed(ctx, blocks.NoContext)
	assert.Contains(t, none, blocks.BlockID("core/paragraph"))
	assert.Len(t, none, len(all)-2)
}

func TestAllowedFailsOpen(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, constants.OptionDisabledGlobal, []byte(`["core/paragraph"]`)))
	st := &failingStore{Store: mem, failGet: map[string]bool{
		constants.OptionDisabledGlobal: true,
		constants.OptionDisabledByType: true,
	}}
	m := newTestManager(t, st)

	assert.Equal(t, m.Registry().Names(), m.Allowed(ctx, blocks.ContextOf("post")))
}

func TestAllowedIgnoresCorruptKey(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, constants.OptionDisabledGlobal, []byte(`["core/paragraph"]`)))
	require.NoError(t, mem.Set(ctx, constants.OptionDisabledByType, []byte(`"garbage"`)))
	m := newTestManager(t, mem)

	_, err := m.State(ctx)
	assert.Error(t, err)

	allowed := m.Allowed(ctx, blocks.ContextOf("post"))
	assert.NotContains(t, allowed, blocks.BlockID("core/paragraph"), "the readable key still applies")
}

func TestDisabledTypesFor(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemory())

	_, err := m.Save(ctx, Selection{ByType: map[string][]string{"core/paragraph": {"post", "page"}}})
	require.NoError(t, err)

	types, err := m.DisabledTypesFor(ctx, "core/paragraph")
	require.NoError(t, err)
	assert.Equal(t, []blocks.ContentType{"page", "post"}, types)

	types, err = m.DisabledTypesFor(ctx, "core/buttons")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestActivateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	m := newTestManager(t, mem)

	_, err := m.Save(ctx, Selection{Global: []string{"core/paragraph"}})
	require.NoError(t, err)

	require.NoError(t, m.Activate(ctx))
	state, err := m.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.Global.Has("core/paragraph"), "activate keeps existing settings")

	raw, err := mem.Get(ctx, constants.OptionDisabledByType)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	at, err := m.ActivatedAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC), at)

	require.NoError(t, m.Uninstall(ctx))
	for _, key := range []string{constants.OptionDisabledGlobal, constants.OptionDisabledByType, constants.OptionPluginActivated} {
		_, err := mem.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrNotFound, key)
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Selection
		wantErr bool
	}{
		{
			name: "canonical shape",
			body: `{"global":["core/list"],"by_type":{"core/quote":["post","page"]}}`,
			want: Selection{Global: []string{"core/list"}, ByType: map[string][]string{"core/quote": {"post", "page"}}},
		},
		{
			name: "form field names and scalar type",
			body: `{"disabled_blocks_global":["core/list"],"disabled_blocks_by_post_type":{"core/quote":"post"}}`,
			want: Selection{Global: []string{"core/list"}, ByType: map[string][]string{"core/quote": {"post"}}},
		},
		{
			name: "wrong shapes are dropped",
			body: `{"global":[1,"core/list",null,{"x":1}],"by_type":["nope"]}`,
			want: Selection{Global: []string{"core/list"}},
		},
		{
			name: "empty object",
			body: `{}`,
			want: Selection{},
		},
		{
			name:    "not an object",
			body:    `["core/list"]`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			body:    `global=core/list`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizerCleansText(t *testing.T) {
	s := Sanitizer{}
	got := s.Global([]string{" core/list\t", "core/\nquote", "<script>x</script>"})
	assert.Equal(t, blocks.NewBlockSet("core/list"), got)

	bt := s.ByType(map[string][]string{"core/list": {" POST ", "page"}})
	assert.Equal(t, blocks.NewTypeSet("post", "page"), bt["core/list"])
}
