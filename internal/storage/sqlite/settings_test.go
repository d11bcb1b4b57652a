package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/cropadvisor/internal/core"
)

func newTestSettings(t *testing.T) *Settings {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSettings(db)
}

func TestSettings_GetMissing(t *testing.T) {
	s := newTestSettings(t)

	_, err := s.Get(context.Background(), core.KeyFarmerName)
	assert.ErrorIs(t, err, core.ErrSettingNotFound)
}

func TestSettings_SetGet(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, core.KeyFarmerName, "Ramesh"))
	require.NoError(t, s.Set(ctx, core.KeyFarmerName, "Ramesh Kumar"))

	got, err := s.Get(ctx, core.KeyFarmerName)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", got)
}

func TestSettings_SetManyAndList(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	values := map[string]string{
		core.KeySoilType:       "Black Cotton Soil",
		core.KeySelectedCrops:  `[{"crop":"Wheat"}]`,
		core.KeyPH:             "6.4",
		core.KeyLastSoilReport: "",
	}
	require.NoError(t, s.SetMany(ctx, values))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestSettings_Delete(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, core.KeyNitrogen, "70"))
	require.NoError(t, s.Delete(ctx, core.KeyNitrogen))
	require.NoError(t, s.Delete(ctx, core.KeyNitrogen))

	_, err := s.Get(ctx, core.KeyNitrogen)
	assert.ErrorIs(t, err, core.ErrSettingNotFound)
}

func TestNewDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSettings(db).Set(ctx, core.KeyFarmLocation, "Khed"))
	require.NoError(t, db.Close())

	db, err = NewDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewSettings(db).Get(ctx, core.KeyFarmLocation)
	require.NoError(t, err)
	assert.Equal(t, "Khed", got)
}
