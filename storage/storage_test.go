package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFile(t.TempDir())
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
	}
}

// Contract assertions shared by every backend, the container-backed
// GormStore included (see postgres_test.go).

func testRoundTrip(t *testing.T, kv Store) {
	ctx := t.Context()

	_, ok, err := kv.Get(ctx, "owner-1", KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "missing key must report absent")

	require.NoError(t, kv.Set(ctx, "owner-1", KeyCart, `[{"productId":"A"}]`))

	value, ok, err := kv.Get(ctx, "owner-1", KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"productId":"A"}]`, value)

	// Set is a full rewrite
	require.NoError(t, kv.Set(ctx, "owner-1", KeyCart, "[]"))
	value, _, err = kv.Get(ctx, "owner-1", KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func testOwnersAreIsolated(t *testing.T, kv Store) {
	ctx := t.Context()

	require.NoError(t, kv.Set(ctx, "owner-1", KeyCart, "a"))
	require.NoError(t, kv.Set(ctx, "owner-2", KeyCart, "b"))

	value, ok, err := kv.Get(ctx, "owner-1", KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", value)
}

func testDelete(t *testing.T, kv Store) {
	ctx := t.Context()

	require.NoError(t, kv.Set(ctx, "owner-1", KeyCheckoutItems, "x"))
	require.NoError(t, kv.Delete(ctx, "owner-1", KeyCheckoutItems))

	_, ok, err := kv.Get(ctx, "owner-1", KeyCheckoutItems)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting an absent key is fine
	require.NoError(t, kv.Delete(ctx, "owner-1", "nope"))
}

func TestStoreRoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) { testRoundTrip(t, kv) })
	}
}

func TestStoreOwnersAreIsolated(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) { testOwnersAreIsolated(t, kv) })
	}
}

func TestStoreDelete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) { testDelete(t, kv) })
	}
}

func TestFileStoreSurvivesCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(dir)
	require.NoError(t, err)
	ctx := t.Context()

	require.NoError(t, kv.Set(ctx, "owner-1", KeyCart, "ok"))

	// clobber the document on disk
	require.NoError(t, os.WriteFile(kv.path("owner-1"), []byte("{not json"), 0644))

	_, ok, err := kv.Get(ctx, "owner-1", KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt document must read as empty")

	require.NoError(t, kv.Set(ctx, "owner-1", KeyCart, "fresh"))
	value, ok, err := kv.Get(ctx, "owner-1", KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh", value)
}
