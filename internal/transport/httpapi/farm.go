package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/farm"
)

type FarmHandler struct {
	settings core.SettingsProvider
}

func NewFarmHandler(settings core.SettingsProvider) *FarmHandler {
	return &FarmHandler{settings: settings}
}

// GET /api/context
// The snapshot and the system prompt the next answer would be grounded in.
func (h *FarmHandler) Context(c *gin.Context) {
	snapshot := farm.Build(c.Request.Context(), h.settings)
	RespondOK(c, gin.H{
		"snapshot": snapshot,
		"prompt":   farm.BuildPrompt(snapshot, false),
	})
}

// GET /api/crops
func (h *FarmHandler) ListCrops(c *gin.Context) {
	RespondOK(c, farm.Crops())
}

// GET /api/crops/:name
func (h *FarmHandler) Crop(c *gin.Context) {
	crop, ok := farm.LookupCrop(c.Param("name"))
	if !ok {
		RespondError(c, http.StatusNotFound, "crop_not_found", fmt.Errorf("no crop named %q", c.Param("name")))
		return
	}
	RespondOK(c, crop)
}

// GET /api/settings
func (h *FarmHandler) ListSettings(c *gin.Context) {
	values, err := h.settings.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_unavailable", err)
		return
	}
	RespondOK(c, values)
}

// PUT /api/settings
// Merges the given keys into the stored settings.
func (h *FarmHandler) UpdateSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	for k := range values {
		if strings.TrimSpace(k) == "" {
			RespondError(c, http.StatusBadRequest, "invalid_key", fmt.Errorf("setting keys must not be empty"))
			return
		}
	}

	ctx := c.Request.Context()
	if err := core.SetAll(ctx, h.settings, values); err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_unavailable", err)
		return
	}

	h.ListSettings(c)
}

// DELETE /api/settings/:key
func (h *FarmHandler) DeleteSetting(c *gin.Context) {
	if err := h.settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
		RespondError(c, http.StatusInternalServerError, "settings_unavailable", err)
		return
	}
	c.Status(http.StatusNoContent)
}
