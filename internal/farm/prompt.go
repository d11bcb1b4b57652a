package farm

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the briefing sent as the system message. It is a pure
// function of the snapshot.
func BuildPrompt(s Snapshot, imageAttached bool) string {
	var sb strings.Builder

	sb.WriteString("You are CropAdvisor AI, an expert agricultural assistant. ")
	sb.WriteString("You have access to real-time farm sensor data and analytics. ")
	sb.WriteString("Always analyze the farmer's data before answering.\n\n")

	sb.WriteString("FARMER INFO:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", s.FarmerName)
	fmt.Fprintf(&sb, "- Location: %s\n", s.Location)
	fmt.Fprintf(&sb, "- Soil Type: %s\n", s.SoilType)
	fmt.Fprintf(&sb, "- Selected Crops: %s\n\n", s.CropList())

	if calendar := s.CropCalendar(); len(calendar) > 0 {
		sb.WriteString("CROP CALENDAR:\n")
		for _, c := range calendar {
			fmt.Fprintf(&sb, "- %s, expected yield %s, market price Rs %d/quintal\n", c.Summary(), c.ExpectedYield, c.MarketPrice)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("LIVE SENSOR READINGS:\n")
	for _, r := range s.Readings {
		fmt.Fprintf(&sb, "- %s: %s [%s] (Optimal: %s)\n", r.Name, r.Quantity(), r.Status(), r.Optimal())
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "CROP HEALTH SCORE: %d/100 (%s)\n", s.HealthScore, s.HealthLabel())
	fmt.Fprintf(&sb, "ACTIVE ALERTS: %s\n", s.AlertList())
	fmt.Fprintf(&sb, "LAST SOIL REPORT: %s\n\n", s.LastSoilReport)

	if imageAttached {
		sb.WriteString("ATTACHED IMAGE:\n")
		sb.WriteString("The farmer attached a photo of their crop or field. Inspect it for visible disease, pest damage ")
		sb.WriteString("or nutrient deficiency symptoms and relate what you see to the readings above.\n\n")
	}

	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("- Answer in the farmer's own language (reply in Hindi if they write in Hindi, and so on).\n")
	sb.WriteString("- Ground every answer in the readings above and quote the values you rely on.\n")
	sb.WriteString("- Keep answers concise but actionable. Use bullet points for steps.\n")

	return sb.String()
}
