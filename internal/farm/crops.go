package farm

import (
	"fmt"
	"slices"
	"strings"
)

type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// CropInfo is the static agronomy sheet of one crop. Periods are month
// ranges, yields are per acre and prices are INR per quintal.
type CropInfo struct {
	Name          string `json:"name"`
	Sowing        string `json:"sowing"`
	Harvest       string `json:"harvest"`
	Fertilizer    string `json:"fertilizer"`
	Risk          Risk   `json:"risk"`
	ExpectedYield string `json:"expected_yield"`
	MarketPrice   int    `json:"market_price"`
}

// Summary is the one-line calendar entry used in briefings and answers.
func (c CropInfo) Summary() string {
	return fmt.Sprintf("%s: sow %s, harvest %s, fertilizer %s, risk %s",
		c.Name, c.Sowing, c.Harvest, c.Fertilizer, c.Risk)
}

var catalogue = []CropInfo{
	{Name: "Cotton", Sowing: "May-Jun", Harvest: "Nov-Jan", Fertilizer: "NPK 20:20:0 + Urea", Risk: RiskHigh, ExpectedYield: "8-12 q/acre", MarketPrice: 6620},
	{Name: "Groundnut", Sowing: "Jun-Jul", Harvest: "Oct-Nov", Fertilizer: "Gypsum 200kg + DAP", Risk: RiskLow, ExpectedYield: "12-16 q/acre", MarketPrice: 6377},
	{Name: "Maize", Sowing: "Jun-Jul", Harvest: "Sep-Oct", Fertilizer: "Urea 100kg + MOP 50kg", Risk: RiskLow, ExpectedYield: "22-28 q/acre", MarketPrice: 2090},
	{Name: "Millets", Sowing: "Jun-Jul", Harvest: "Oct-Nov", Fertilizer: "Urea 40kg + SSP 20kg", Risk: RiskLow, ExpectedYield: "8-12 q/acre", MarketPrice: 2500},
	{Name: "Pulses", Sowing: "Oct-Nov", Harvest: "Feb-Mar", Fertilizer: "Rhizobium + DAP 20kg", Risk: RiskLow, ExpectedYield: "6-10 q/acre", MarketPrice: 5440},
	{Name: "Rice", Sowing: "Jun-Jul", Harvest: "Nov-Dec", Fertilizer: "Urea 120kg/acre + SSP", Risk: RiskMedium, ExpectedYield: "45-55 q/acre", MarketPrice: 2800},
	{Name: "Soybean", Sowing: "Jun-Jul", Harvest: "Oct-Nov", Fertilizer: "DAP 60kg + Rhizobium", Risk: RiskMedium, ExpectedYield: "10-14 q/acre", MarketPrice: 4892},
	{Name: "Sugarcane", Sowing: "Feb-Mar", Harvest: "Dec-Jan", Fertilizer: "Urea 180kg + SSP 90kg", Risk: RiskMedium, ExpectedYield: "350-450 q/acre", MarketPrice: 315},
	{Name: "Vegetables", Sowing: "Oct-Nov", Harvest: "Jan-Feb", Fertilizer: "NPK 19:19:19 + FYM", Risk: RiskHigh, ExpectedYield: "60-90 q/acre", MarketPrice: 2000},
	{Name: "Wheat", Sowing: "Nov-Dec", Harvest: "Mar-Apr", Fertilizer: "DAP 50kg + Urea 65kg", Risk: RiskLow, ExpectedYield: "18-22 q/acre", MarketPrice: 2275},
}

// Crops returns the whole catalogue sorted by name.
func Crops() []CropInfo {
	return slices.Clone(catalogue)
}

// LookupCrop finds a crop by name, ignoring case and surrounding space.
func LookupCrop(name string) (CropInfo, bool) {
	name = strings.TrimSpace(name)
	for _, c := range catalogue {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return CropInfo{}, false
}

// CropCalendar returns the catalogue entries of the selected crops, in
// selection order. Crops missing from the catalogue are skipped.
func (s Snapshot) CropCalendar() []CropInfo {
	var out []CropInfo
	for _, name := range s.Crops {
		if c, ok := LookupCrop(name); ok && !slices.ContainsFunc(out, func(o CropInfo) bool { return o.Name == c.Name }) {
			out = append(out, c)
		}
	}
	return out
}
