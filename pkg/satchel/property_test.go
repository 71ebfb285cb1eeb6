package satchel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchel-io/satchel/pkg/types"
)

func TestProperty_SeedsBackingStoreWhenAbsent(t *testing.T) {
	r, dataDir := newTestRegistry(t)

	p, err := NewProperty(r, "default", "volume", 0.8)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 0.8, p.Value())

	// The default was written through, so the section file exists and a
	// plain registry read sees the seeded value.
	assert.FileExists(t, filepath.Join(dataDir, "default.satchel"))
	got, err := Get(r, "default", "volume", 0.0)
	require.NoError(t, err)
	assert.Equal(t, 0.8, got)
}

func TestProperty_ExistingValueWinsOverDefault(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := Set(r, "default", "volume", 0.3)
	require.NoError(t, err)

	p, err := NewProperty(r, "default", "volume", 0.8)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 0.3, p.Value(), "stored value must win over the default")
}

func TestProperty_WriteThrough(t *testing.T) {
	r, _ := newTestRegistry(t)

	p, err := NewProperty(r, "default", "name", "Alice")
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Set("Bob"))

	// The cache was refreshed by the synchronous notification.
	assert.Equal(t, "Bob", p.Value())

	// And the value reached the backing store.
	got, err := Get(r, "default", "name", "")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got)
}

func TestProperty_CacheCoherenceAcrossHandles(t *testing.T) {
	r, _ := newTestRegistry(t)

	a, err := NewProperty(r, "default", "score", 0)
	require.NoError(t, err)
	defer a.Close()

	b, err := NewProperty(r, "default", "score", 0)
	require.NoError(t, err)
	defer b.Close()

	// A write through one handle is visible on the other with no explicit
	// refresh.
	require.NoError(t, b.Set(42))
	assert.Equal(t, 42, a.Value())

	// The same holds for a registry-level write that bypasses both handles.
	_, err = Set(r, "default", "score", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, a.Value())
	assert.Equal(t, 7, b.Value())
}

func TestProperty_IgnoresOtherKeys(t *testing.T) {
	r, _ := newTestRegistry(t)

	p, err := NewProperty(r, "default", "score", 1)
	require.NoError(t, err)
	defer p.Close()

	_, err = Set(r, "default", "unrelated", 99)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Value())
}

func TestProperty_CloseRevokesSubscription(t *testing.T) {
	r, _ := newTestRegistry(t)

	p, err := NewProperty(r, "default", "score", 1)
	require.NoError(t, err)
	p.Close()

	_, err = Set(r, "default", "score", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Value(), "closed property must not observe updates")

	// Close is idempotent.
	p.Close()
}

func TestProperty_UnknownSection(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := NewProperty(r, "ghost", "k", 0)
	assert.ErrorIs(t, err, types.ErrUnknownSection)
}

func TestProperty_TypedRecord(t *testing.T) {
	type binding struct {
		Key    string `json:"key"`
		Action string `json:"action"`
	}

	dataDir := t.TempDir()
	cfg := types.Config{DataDir: dataDir}

	r := Open(cfg, nil)
	p, err := NewProperty(r, "default", "jump", binding{Key: "space", Action: "jump"})
	require.NoError(t, err)
	require.NoError(t, p.Set(binding{Key: "w", Action: "jump"}))
	p.Close()
	r.Close()

	// A cold reopen reconstructs the record from the generic form.
	r2 := Open(cfg, nil)
	defer r2.Close()
	p2, err := NewProperty(r2, "default", "jump", binding{})
	require.NoError(t, err)
	defer p2.Close()
	assert.Equal(t, binding{Key: "w", Action: "jump"}, p2.Value())
}
