package farm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

const (
	DefaultFarmerName     = "Farmer"
	DefaultLocation       = "Unknown"
	DefaultSoilType       = "Unknown"
	DefaultLastSoilReport = "not available"
	NoCropsSelected       = "not selected yet"
	NoAlerts              = "none"
)

// Snapshot is the farm state one request is grounded in. It is rebuilt for
// every request and never written back.
type Snapshot struct {
	FarmerName     string    `json:"farmer_name"`
	Location       string    `json:"location"`
	SoilType       string    `json:"soil_type"`
	Crops          []string  `json:"crops"`
	Readings       []Reading `json:"readings"`
	HealthScore    int       `json:"health_score"`
	Alerts         []string  `json:"alerts"`
	LastSoilReport string    `json:"last_soil_report"`
}

func (s Snapshot) CropList() string {
	if len(s.Crops) == 0 {
		return NoCropsSelected
	}
	return strings.Join(s.Crops, ", ")
}

func (s Snapshot) AlertList() string {
	if len(s.Alerts) == 0 {
		return NoAlerts
	}
	return strings.Join(s.Alerts, "; ")
}

func (s Snapshot) HealthLabel() string {
	return HealthLabel(s.HealthScore)
}

// Reading returns the reading stored under key.
func (s Snapshot) Reading(key string) (Reading, bool) {
	for _, r := range s.Readings {
		if r.Key == key {
			return r, true
		}
	}
	return Reading{}, false
}

// Build reads the farm settings and assembles a Snapshot. It never fails:
// missing or malformed values fall back to their documented defaults.
func Build(ctx context.Context, settings core.SettingsProvider) Snapshot {
	r := reader{ctx: ctx, settings: settings}

	s := Snapshot{
		FarmerName:     r.text(core.KeyFarmerName, DefaultFarmerName),
		Location:       r.text(core.KeyFarmLocation, DefaultLocation),
		SoilType:       r.text(core.KeySoilType, DefaultSoilType),
		Crops:          r.crops(),
		LastSoilReport: r.text(core.KeyLastSoilReport, DefaultLastSoilReport),
	}

	s.Readings = make([]Reading, 0, len(sensors))
	for _, sn := range sensors {
		s.Readings = append(s.Readings, Reading{
			Key:   sn.key,
			Name:  sn.name,
			Short: sn.short,
			Unit:  sn.unit,
			Value: r.number(sn.key, sn.def),
			Range: sn.rng,
			Soil:  sn.soil,
		})
	}

	s.HealthScore = HealthScore(s.Readings)
	s.Alerts = append(r.alerts(), readingAlerts(s.Readings)...)
	return s
}

func readingAlerts(readings []Reading) []string {
	var alerts []string
	for _, rd := range readings {
		switch rd.Status() {
		case StatusLow:
			alerts = append(alerts, fmt.Sprintf("%s below optimal: %s (optimal %s)", rd.Name, rd.Quantity(), rd.Optimal()))
		case StatusHigh:
			alerts = append(alerts, fmt.Sprintf("%s above optimal: %s (optimal %s)", rd.Name, rd.Quantity(), rd.Optimal()))
		}
	}
	return alerts
}

type reader struct {
	ctx      context.Context
	settings core.SettingsProvider
}

func (r reader) raw(key string) (string, bool) {
	if r.settings == nil {
		return "", false
	}
	v, err := r.settings.Get(r.ctx, key)
	if err != nil {
		if !errors.Is(err, core.ErrSettingNotFound) {
			log.FromCtx(r.ctx).Warn().Err(err).Str("key", key).Msg("failed to read setting, using default")
		}
		return "", false
	}
	return v, true
}

func (r reader) text(key, def string) string {
	v, ok := r.raw(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func (r reader) number(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		log.FromCtx(r.ctx).Warn().Str("key", key).Str("value", v).Msg("malformed sensor reading, using default")
		return def
	}
	return f
}

// crops decodes the selected-crop records. Records without a name are skipped;
// a payload that is not a JSON array yields no crops.
func (r reader) crops() []string {
	v, ok := r.raw(core.KeySelectedCrops)
	if !ok {
		return nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(v), &records); err != nil {
		log.FromCtx(r.ctx).Warn().Err(err).Msg("malformed crop selection, treating as empty")
		return nil
	}

	var crops []string
	for _, raw := range records {
		var rec cropRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if name := strings.TrimSpace(rec.Crop); name != "" {
			crops = append(crops, name)
		}
	}
	return crops
}

func (r reader) alerts() []string {
	v, ok := r.raw(core.KeyActiveAlerts)
	if !ok {
		return nil
	}

	var stored []string
	if err := json.Unmarshal([]byte(v), &stored); err != nil {
		log.FromCtx(r.ctx).Warn().Err(err).Msg("malformed stored alerts, ignoring")
		return nil
	}

	alerts := make([]string, 0, len(stored))
	for _, a := range stored {
		if a = strings.TrimSpace(a); a != "" {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

type cropRecord struct {
	Crop string `json:"crop"`
}

// EncodeCrops renders crop names in the stored selectedCrops format.
func EncodeCrops(crops []string) string {
	records := make([]cropRecord, 0, len(crops))
	for _, c := range crops {
		if c = strings.TrimSpace(c); c != "" {
			records = append(records, cropRecord{Crop: c})
		}
	}
	data, _ := json.Marshal(records)
	return string(data)
}
