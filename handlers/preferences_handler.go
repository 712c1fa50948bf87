package handlers

import (
	"net/http"

	"nutrisnap-backend/models"
	"nutrisnap-backend/repository"

	"github.com/gin-gonic/gin"
)

// PreferencesHandler handles dietary preferences and model settings
type PreferencesHandler struct {
	preferences *repository.PreferencesRepository
	settings    *repository.SettingsRepository
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(preferences *repository.PreferencesRepository, settings *repository.SettingsRepository) *PreferencesHandler {
	return &PreferencesHandler{
		preferences: preferences,
		settings:    settings,
	}
}

// GetPreferences handles GET /api/preferences
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, h.preferences.Get(c.Request.Context(), profile))
}

// ReplacePreferences handles PUT /api/preferences. Fields missing from the
// body take their default values.
func (h *PreferencesHandler) ReplacePreferences(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	prefs := models.DefaultPreferences()
	if err := c.ShouldBindJSON(&prefs); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PREFERENCES", err.Error())
		return
	}

	h.preferences.Replace(c.Request.Context(), profile, prefs)
	respondData(c, http.StatusOK, prefs)
}

// UpdatePreferences handles PATCH /api/preferences
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var upd models.PreferencesUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ctx := c.Request.Context()
	merged := h.preferences.Get(ctx, profile)
	upd.Apply(&merged)
	if err := merged.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PREFERENCES", err.Error())
		return
	}

	respondData(c, http.StatusOK, h.preferences.Update(ctx, profile, upd))
}

// GetSettings handles GET /api/settings
func (h *PreferencesHandler) GetSettings(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, h.settings.Get(c.Request.Context(), profile))
}

// ReplaceSettings handles PUT /api/settings. Empty model names fall back to
// the default model.
func (h *PreferencesHandler) ReplaceSettings(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var settings models.AppSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if settings.VisionModel == "" {
		settings.VisionModel = models.DefaultModel
	}
	if settings.RecipeModel == "" {
		settings.RecipeModel = models.DefaultModel
	}

	h.settings.Replace(c.Request.Context(), profile, settings)
	respondData(c, http.StatusOK, settings)
}

// UpdateSettings handles PATCH /api/settings
func (h *PreferencesHandler) UpdateSettings(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var upd models.SettingsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	respondData(c, http.StatusOK, h.settings.Update(c.Request.Context(), profile, upd))
}
