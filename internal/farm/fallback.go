package farm

import (
	"fmt"
	"strings"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// FallbackAnswer is shown when the chat endpoint rejects the request or
// returns no body.
func FallbackAnswer(s Snapshot) string {
	var sb strings.Builder

	sb.WriteString("Based on your farm data:\n")
	fmt.Fprintf(&sb, "- **Soil Health**: %d/100 (%s, last report: %s)\n", s.HealthScore, s.HealthLabel(), s.LastSoilReport)
	fmt.Fprintf(&sb, "- **N**: %s | **P**: %s | **K**: %s\n",
		quantity(s, core.KeyNitrogen), quantity(s, core.KeyPhosphorus), quantity(s, core.KeyPotassium))
	fmt.Fprintf(&sb, "- **Moisture**: %s | **pH**: %s\n\n", quantity(s, core.KeyMoisture), quantity(s, core.KeyPH))
	fmt.Fprintf(&sb, "**Active Alerts**: %s\n\n", s.AlertList())
	if calendar := s.CropCalendar(); len(calendar) > 0 {
		sb.WriteString("**Crop Calendar**:\n")
		for _, c := range calendar {
			fmt.Fprintf(&sb, "- %s\n", c.Summary())
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "For your crops (%s), %s Ask me specific questions about your farm!", s.CropList(), recommendation(s))

	return sb.String()
}

// OfflineAnswer is shown when the request could not be made at all.
func OfflineAnswer(s Snapshot) string {
	ph := "unknown"
	if r, ok := s.Reading(core.KeyPH); ok {
		ph = fmt.Sprintf("%s (%s)", r.Quantity(), r.Status())
	}
	return fmt.Sprintf(
		"I'm analyzing your farm data. Your soil health score is **%d/100**. Current alerts: **%s**. Your soil pH is %s. Ask me specific questions!",
		s.HealthScore, s.AlertList(), ph,
	)
}

func quantity(s Snapshot, key string) string {
	if r, ok := s.Reading(key); ok {
		return r.Quantity()
	}
	return "n/a"
}

func recommendation(s Snapshot) string {
	var off []string
	for _, r := range s.Readings {
		if st := r.Status(); st != StatusOK {
			off = append(off, fmt.Sprintf("%s (%s)", strings.ToLower(r.Name), st))
		}
	}
	if len(off) == 0 {
		return "all monitored readings are within their optimal ranges, so keep to your current schedule."
	}
	return "I recommend correcting " + strings.Join(off, ", ") + " first."
}
