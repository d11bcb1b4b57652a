package farm

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/storage/memory"
	"github.com/stretchr/testify/assert"
)

func TestFallbackAnswers(t *testing.T) {
	settings := memory.NewSettings(map[string]string{
		core.KeyActiveAlerts:  `["Soil moisture dropping, irrigation needed in 2 days"]`,
		core.KeyPhosphorus:    "28",
		core.KeySelectedCrops: `[{"crop":"Cotton"}]`,
	})
	s := Build(context.Background(), settings)
	score := fmt.Sprintf("%d/100", s.HealthScore)

	fallback := FallbackAnswer(s)
	assert.Contains(t, fallback, score)
	assert.Contains(t, fallback, s.AlertList())
	assert.Contains(t, fallback, "**P**: 28 mg/kg")
	assert.Contains(t, fallback, "For your crops (Cotton)")
	assert.Contains(t, fallback, "phosphorus (p) (low)")

	offline := OfflineAnswer(s)
	assert.Contains(t, offline, score)
	assert.Contains(t, offline, s.AlertList())
	assert.Contains(t, offline, "6.8 (ok)")
}

func TestFallbackAnswer_AllOptimal(t *testing.T) {
	s := Build(context.Background(), memory.NewSettings(nil))

	fallback := FallbackAnswer(s)
	assert.Contains(t, fallback, "**Active Alerts**: none")
	assert.Contains(t, fallback, "within their optimal ranges")
	assert.Contains(t, fallback, "For your crops (not selected yet)")
}
