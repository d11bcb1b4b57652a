package memory

import (
	"context"
	"testing"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	ctx := context.Background()
	seed := map[string]string{core.KeyFarmerName: "Ramesh"}
	s := NewSettings(seed)

	// the seed map is copied
	seed[core.KeyFarmerName] = "changed"

	v, err := s.Get(ctx, core.KeyFarmerName)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", v)

	_, err = s.Get(ctx, core.KeySoilType)
	assert.ErrorIs(t, err, core.ErrSettingNotFound)

	require.NoError(t, s.Set(ctx, core.KeySoilType, "Black Cotton Soil"))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		core.KeyFarmerName: "Ramesh",
		core.KeySoilType:   "Black Cotton Soil",
	}, all)

	// List returns a copy
	all[core.KeyFarmerName] = "mutated"
	v, _ = s.Get(ctx, core.KeyFarmerName)
	assert.Equal(t, "Ramesh", v)
}

func TestSettings_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(map[string]string{core.KeyFarmerName: "Ramesh"})

	require.NoError(t, s.Delete(ctx, core.KeyFarmerName))
	_, err := s.Get(ctx, core.KeyFarmerName)
	assert.ErrorIs(t, err, core.ErrSettingNotFound)

	assert.NoError(t, s.Delete(ctx, core.KeyFarmerName))
}
