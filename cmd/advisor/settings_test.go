package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/cropadvisor/internal/core"
)

func TestParseProfile(t *testing.T) {
	doc := `
farmerName: Ramesh
farmLocation: "Khed, Pune"
soilType: Black cotton
selectedCrops:
  - Wheat
  - Onion
activeAlerts: [Soil moisture dropping in field 2]
sensor:
  nitrogen: 58
  ph: 6.5
  moisture: 31.5
lastSoilReport:
`
	got, err := parseProfile([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		core.KeyFarmerName:     "Ramesh",
		core.KeyFarmLocation:   "Khed, Pune",
		core.KeySoilType:       "Black cotton",
		core.KeySelectedCrops:  `[{"crop":"Wheat"},{"crop":"Onion"}]`,
		core.KeyActiveAlerts:   `["Soil moisture dropping in field 2"]`,
		core.KeyNitrogen:       "58",
		core.KeyPH:             "6.5",
		core.KeyMoisture:       "31.5",
		core.KeyLastSoilReport: "",
	}, got)
}

func TestParseProfile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "farmerName: [unclosed"},
		{name: "unsupported list", doc: "soilType: [a, b]"},
		{name: "nested list item", doc: "selectedCrops:\n  - crop: Wheat\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProfile([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
