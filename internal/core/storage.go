package core

import (
	"context"
	"errors"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsProvider is the persisted key/value state the farm context is built from.
// Get returns ErrSettingNotFound for absent keys.
type SettingsProvider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) (map[string]string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Settings keys shared by the context builder, the HTTP API and the CLI.
const (
	KeyFarmerName     = "farmerName"
	KeyFarmLocation   = "farmLocation"
	KeySoilType       = "soilType"
	KeySelectedCrops  = "selectedCrops"
	KeyActiveAlerts   = "activeAlerts"
	KeyLastSoilReport = "lastSoilReport"

	KeyNitrogen    = "sensor.nitrogen"
	KeyPhosphorus  = "sensor.phosphorus"
	KeyPotassium   = "sensor.potassium"
	KeyMoisture    = "sensor.moisture"
	KeyPH          = "sensor.ph"
	KeyTemperature = "sensor.temperature"
	KeyHumidity    = "sensor.humidity"
)

// BatchSetter is implemented by backends that can write many keys atomically.
type BatchSetter interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// SetAll writes values in one batch when the backend supports it.
func SetAll(ctx context.Context, settings SettingsProvider, values map[string]string) error {
	if b, ok := settings.(BatchSetter); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := settings.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
