package farm

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sandevgo/cropadvisor/internal/core"
)

type Status string

const (
	StatusLow  Status = "low"
	StatusOK   Status = "ok"
	StatusHigh Status = "high"
)

// Range is an inclusive optimal band.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Reading struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Short string  `json:"short"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
	Range Range   `json:"range"`
	// Soil readings feed the health score; weather readings only get tagged.
	Soil bool `json:"soil"`
}

func (r Reading) Status() Status {
	switch {
	case r.Value < r.Range.Min:
		return StatusLow
	case r.Value > r.Range.Max:
		return StatusHigh
	default:
		return StatusOK
	}
}

// Quantity renders the value with its unit, e.g. "72 mg/kg" or "55%".
func (r Reading) Quantity() string {
	return formatNumber(r.Value) + r.Unit
}

func (r Reading) Optimal() string {
	return fmt.Sprintf("%s–%s%s", formatNumber(r.Range.Min), formatNumber(r.Range.Max), r.Unit)
}

// sensor describes one reading the builder knows how to load.
type sensor struct {
	key   string
	name  string
	short string
	unit  string
	def   float64
	rng   Range
	soil  bool
}

// sensors is the fixed reading set, in briefing order. Defaults are the
// reference farm values used when a reading has never been stored.
var sensors = []sensor{
	{key: core.KeyNitrogen, name: "Nitrogen (N)", short: "N", unit: " mg/kg", def: 72, rng: Range{60, 90}, soil: true},
	{key: core.KeyPhosphorus, name: "Phosphorus (P)", short: "P", unit: " mg/kg", def: 38, rng: Range{30, 55}, soil: true},
	{key: core.KeyPotassium, name: "Potassium (K)", short: "K", unit: " mg/kg", def: 46, rng: Range{40, 60}, soil: true},
	{key: core.KeyMoisture, name: "Soil Moisture", short: "Moisture", unit: "%", def: 55, rng: Range{40, 70}, soil: true},
	{key: core.KeyPH, name: "Soil pH", short: "pH", unit: "", def: 6.8, rng: Range{6.0, 7.5}, soil: true},
	{key: core.KeyTemperature, name: "Temperature", short: "Temp", unit: "°C", def: 28.4, rng: Range{20, 32}},
	{key: core.KeyHumidity, name: "Humidity", short: "Humidity", unit: "%", def: 68, rng: Range{50, 80}},
}

// HealthScore derives a 0-100 score from the soil readings. Each soil reading
// is worth an equal share: full marks at the middle of its optimal band,
// 60% at the band edges, decaying to zero one half-band outside it.
func HealthScore(readings []Reading) int {
	var total, max float64
	for _, r := range readings {
		if !r.Soil {
			continue
		}
		max += 20
		total += readingPoints(r)
	}
	if max == 0 {
		return 0
	}
	score := math.Round(total / max * 100)
	return int(math.Min(100, math.Max(0, score)))
}

func readingPoints(r Reading) float64 {
	mid := (r.Range.Min + r.Range.Max) / 2
	half := (r.Range.Max - r.Range.Min) / 2
	if half <= 0 {
		return 0
	}

	switch r.Status() {
	case StatusOK:
		return 20 - 8*math.Abs(r.Value-mid)/half
	case StatusLow:
		return 12 * math.Max(0, 1-(r.Range.Min-r.Value)/half)
	default:
		return 12 * math.Max(0, 1-(r.Value-r.Range.Max)/half)
	}
}

// HealthLabel buckets a score the way the dashboard ring does.
func HealthLabel(score int) string {
	switch {
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
