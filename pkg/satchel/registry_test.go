package satchel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchel-io/satchel/pkg/types"
)

// newTestRegistry opens a registry over a temp data directory.
func newTestRegistry(t *testing.T, sections ...types.Section) (*Registry, string) {
	t.Helper()
	dataDir := t.TempDir()
	r := Open(types.Config{DataDir: dataDir, Sections: sections}, nil)
	return r, dataDir
}

func TestRegistry_DefaultSection(t *testing.T) {
	r, dataDir := newTestRegistry(t)

	assert.Equal(t, []string{"default"}, r.Sections())

	path, err := r.SectionPath(types.DefaultSection)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "default.satchel"), path)
}

func TestRegistry_WriteThroughConsistency(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := Set(r, "default", "k", 5)
	require.NoError(t, err)

	got, err := Get(r, "default", "k", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestRegistry_ReadMissThenPersistedWrite(t *testing.T) {
	dataDir := t.TempDir()
	cfg := types.Config{DataDir: dataDir}

	r := Open(cfg, nil)
	got, err := Get(r, "default", "name", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got)

	// A pure read miss creates no file.
	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "read miss must not write")

	_, err = Set(r, "default", "name", "Bob")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "default.satchel"))
	r.Close()

	// Reopening from scratch observes the persisted value.
	r2 := Open(cfg, nil)
	defer r2.Close()
	got, err = Get(r2, "default", "name", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got)
}

func TestRegistry_UnknownSection(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := Get(r, "ghost", "k", 0)
	assert.ErrorIs(t, err, types.ErrUnknownSection)

	_, err = Set(r, "ghost", "k", 1)
	assert.ErrorIs(t, err, types.ErrUnknownSection)

	_, err = r.Has("ghost", "k")
	assert.ErrorIs(t, err, types.ErrUnknownSection)

	assert.ErrorIs(t, r.Clear("ghost", "k"), types.ErrUnknownSection)
	assert.ErrorIs(t, r.ClearSection("ghost"), types.ErrUnknownSection)
}

func TestRegistry_CollisionDetection(t *testing.T) {
	tests := []struct {
		name     string
		sections []types.Section
		want     []string // registered section ids
	}{
		{
			name: "id collision rejects the batch",
			sections: []types.Section{
				{ID: "a", Path: "p1.satchel"},
				{ID: "a", Path: "p2.satchel"},
			},
			want: []string{"default"},
		},
		{
			name: "path collision rejects the batch",
			sections: []types.Section{
				{ID: "a", Path: "p1.satchel"},
				{ID: "b", Path: "p1.satchel"},
			},
			want: []string{"default"},
		},
		{
			name: "exact duplicate is dropped silently",
			sections: []types.Section{
				{ID: "a", Path: "p1.satchel"},
				{ID: "a", Path: "p1.satchel"},
			},
			want: []string{"a", "default"},
		},
		{
			name: "one hard collision rejects even clean entries",
			sections: []types.Section{
				{ID: "clean", Path: "clean.satchel"},
				{ID: "a", Path: "p1.satchel"},
				{ID: "a", Path: "p2.satchel"},
			},
			want: []string{"default"},
		},
		{
			name: "colliding with the default section id is hard",
			sections: []types.Section{
				{ID: "default", Path: "elsewhere.satchel"},
			},
			want: []string{"default"},
		},
		{
			name: "unknown obfuscator rejects the batch",
			sections: []types.Section{
				{ID: "a", Path: "p1.satchel", Obfuscator: "rot13"},
				{ID: "b", Path: "p2.satchel"},
			},
			want: []string{"default"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t, tt.sections...)
			assert.Equal(t, tt.want, r.Sections())
		})
	}
}

func TestRegistry_CollisionLeavesDefaultUsable(t *testing.T) {
	r, _ := newTestRegistry(t,
		types.Section{ID: "a", Path: "p1.satchel"},
		types.Section{ID: "a", Path: "p2.satchel"},
	)

	_, err := Get(r, "a", "k", 0)
	assert.ErrorIs(t, err, types.ErrUnknownSection)

	_, err = Set(r, "default", "k", 1)
	assert.NoError(t, err)
}

func TestRegistry_SkipsUnconfiguredEntries(t *testing.T) {
	r, _ := newTestRegistry(t,
		types.Section{},
		types.Section{ID: "a"},
	)
	assert.Equal(t, []string{"a", "default"}, r.Sections())
}

func TestRegistry_SectionPathResolution(t *testing.T) {
	r, dataDir := newTestRegistry(t,
		types.Section{ID: "rel", Path: "nested/rel.satchel"},
		types.Section{ID: "tokened", Path: "${DATA_DIR}/tok.satchel"},
		types.Section{ID: "bare"},
	)

	relPath, err := r.SectionPath("rel")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "nested", "rel.satchel"), relPath)

	tokPath, err := r.SectionPath("tokened")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "tok.satchel"), tokPath)

	barePath, err := r.SectionPath("bare")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "bare.satchel"), barePath)
}

func TestRegistry_PerSectionObfuscator(t *testing.T) {
	dataDir := t.TempDir()
	cfg := types.Config{
		DataDir: dataDir,
		Sections: []types.Section{
			{ID: "secret", Path: "secret.satchel", Obfuscator: "base64"},
		},
	}

	r := Open(cfg, nil)
	_, err := Set(r, "secret", "k", "v")
	require.NoError(t, err)
	r.Close()

	raw, err := os.ReadFile(filepath.Join(dataDir, "secret.satchel"))
	require.NoError(t, err)
	assert.NotEqual(t, byte('{'), raw[0], "base64 section must not hold plain JSON")

	// Reopening with the same configuration reads it back.
	r2 := Open(cfg, nil)
	defer r2.Close()
	got, err := Get(r2, "secret", "k", "")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestRegistry_CorruptSectionDoesNotPoisonOthers(t *testing.T) {
	dataDir := t.TempDir()
	cfg := types.Config{
		DataDir: dataDir,
		Sections: []types.Section{
			{ID: "bad", Path: "bad.satchel", Obfuscator: "base64"},
		},
	}
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "bad.satchel"), []byte("!!!"), 0o644))

	r := Open(cfg, nil)
	defer r.Close()

	_, err := Get(r, "bad", "k", 0)
	assert.ErrorIs(t, err, types.ErrCorruptData)

	// The default section is unaffected.
	_, err = Set(r, "default", "k", 1)
	assert.NoError(t, err)
}

func TestRegistry_ClearOperations(t *testing.T) {
	r, _ := newTestRegistry(t, types.Section{ID: "extra"})

	_, err := Set(r, "default", "a", 1)
	require.NoError(t, err)
	_, err = Set(r, "extra", "b", 2)
	require.NoError(t, err)

	// Single-key clear.
	require.NoError(t, r.Clear("default", "a"))
	has, err := r.Has("default", "a")
	require.NoError(t, err)
	assert.False(t, has)

	// Clearing an absent key is a no-op.
	require.NoError(t, r.Clear("default", "a"))

	// Whole-registry clear.
	_, err = Set(r, "default", "a", 1)
	require.NoError(t, err)
	require.NoError(t, r.ClearAll())
	for _, sec := range []string{"default", "extra"} {
		keys, err := r.Keys(sec)
		require.NoError(t, err)
		assert.Empty(t, keys, "section %s not cleared", sec)
	}
}

func TestRegistry_ChangeEvents(t *testing.T) {
	r, _ := newTestRegistry(t, types.Section{ID: "extra"})

	var defaultEvents, extraEvents []string
	r.SubscribeDefault(func(id string, v any) {
		defaultEvents = append(defaultEvents, id)
	})
	token := r.Subscribe("extra", func(id string, v any) {
		extraEvents = append(extraEvents, id)
	})

	_, err := Set(r, "default", "k", 1)
	require.NoError(t, err)
	_, err = Set(r, "extra", "j", 2)
	require.NoError(t, err)

	// Delivery is synchronous and scoped to the owning section.
	assert.Equal(t, []string{"k"}, defaultEvents)
	assert.Equal(t, []string{"j"}, extraEvents)

	r.Unsubscribe("extra", token)
	_, err = Set(r, "extra", "j", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"j"}, extraEvents, "unsubscribed callback must not fire")
}

func TestRegistry_SubscribeToUnregisteredSection(t *testing.T) {
	dataDir := t.TempDir()
	r := Open(types.Config{DataDir: dataDir}, nil)
	defer r.Close()

	var events []string
	r.Subscribe("later", func(id string, v any) {
		events = append(events, id)
	})

	// Not registered yet: operations fail, the subscription just idles.
	_, err := Set(r, "later", "k", 1)
	require.ErrorIs(t, err, types.ErrUnknownSection)

	// Reload with the section configured; the subscription starts firing.
	r.Reload(types.Config{
		DataDir:  dataDir,
		Sections: []types.Section{{ID: "later"}},
	})
	_, err = Set(r, "later", "k", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, events)
}

func TestRegistry_ReloadPicksUpConfigurationEdits(t *testing.T) {
	dataDir := t.TempDir()
	r := Open(types.Config{
		DataDir: dataDir,
		Sections: []types.Section{
			{ID: "a", Path: "p1.satchel"},
			{ID: "a", Path: "p2.satchel"},
		},
	}, nil)
	defer r.Close()
	require.Equal(t, []string{"default"}, r.Sections())

	// The operator fixes the collision; Reload recovers the full set.
	r.Reload(types.Config{
		DataDir: dataDir,
		Sections: []types.Section{
			{ID: "a", Path: "p1.satchel"},
			{ID: "b", Path: "p2.satchel"},
		},
	})
	assert.Equal(t, []string{"a", "b", "default"}, r.Sections())
}

func TestRegistry_ClosedRegistryServesNothing(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Close()

	_, err := Get(r, "default", "k", 0)
	assert.ErrorIs(t, err, types.ErrUnknownSection)
}

func TestRegistry_FloatRoundTripAcrossReopen(t *testing.T) {
	dataDir := t.TempDir()
	cfg := types.Config{DataDir: dataDir}

	r := Open(cfg, nil)
	_, err := Set(r, "default", "x", float32(3.5))
	require.NoError(t, err)
	r.Close()

	r2 := Open(cfg, nil)
	defer r2.Close()
	got, err := Get(r2, "default", "x", float32(0))
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), got)
}

func TestRegistry_CoercionMismatchSurfaces(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := Set(r, "default", "word", "not a number")
	require.NoError(t, err)

	_, err = Get(r, "default", "word", 0)
	assert.ErrorIs(t, err, types.ErrCoercion)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, types.Config{}.Validate())
	assert.NoError(t, types.Config{Sections: []types.Section{{}}}.Validate())
	err := types.Config{Sections: []types.Section{{Path: "p"}}}.Validate()
	assert.ErrorIs(t, err, types.ErrSectionIDEmpty)
}
