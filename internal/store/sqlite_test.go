package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PatchWall/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleInventory() *model.Inventory {
	inv := model.NewInventory()
	inv.AddUserStock(model.NewUserStock(1000, 1200))
	inv.ReplaceDiscovered([]model.Panel{
		model.NewPanel(model.KindSourcedUsed, 1200, 1400, 85, model.Provenance{Label: "Listing A", Link: "https://example.com/a"}),
		model.NewPanel(model.KindSourcedNew, 2000, 2100, 350, model.Provenance{Label: "Listing B"}),
	})
	return inv
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	inv := sampleInventory()

	require.NoError(t, s.Save(ctx, inv))
	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.UserAdded, 1)
	require.Len(t, loaded.Discovered, 2)
	assert.Equal(t, inv.UserAdded[0], loaded.UserAdded[0])
	assert.Equal(t, inv.Discovered[0], loaded.Discovered[0], "order and fields are preserved")
	assert.Equal(t, inv.Discovered[1], loaded.Discovered[1])
}

func TestSaveReplacesPreviousContents(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Save(ctx, sampleInventory()))

	smaller := model.NewInventory()
	smaller.AddUserStock(model.NewUserStock(900, 900))
	require.NoError(t, s.Save(ctx, smaller))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestLoadEmpty(t *testing.T) {
	loaded, err := openTestStore(t).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestSetFlags(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	inv := sampleInventory()
	require.NoError(t, s.Save(ctx, inv))

	id := inv.Discovered[0].ID
	require.NoError(t, s.SetFlags(ctx, id, false, true))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	p := loaded.FindByID(id)
	require.NotNil(t, p)
	assert.False(t, p.Visible)
	assert.True(t, p.Forced)

	err = s.SetFlags(ctx, "missing", true, false)
	assert.True(t, errors.Is(err, model.ErrPanelNotFound))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	inv := sampleInventory()
	require.NoError(t, s.Save(ctx, inv))

	require.NoError(t, s.Delete(ctx, inv.UserAdded[0].ID))
	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.UserAdded)

	assert.ErrorIs(t, s.Delete(ctx, "missing"), model.ErrPanelNotFound)
}

func TestInitIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Init(context.Background()))
}
