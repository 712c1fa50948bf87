package repository

import (
	"context"

	"nutrisnap-backend/models"
	"nutrisnap-backend/storage"

	"go.uber.org/zap"
)

// SettingsRepository persists the model selection for a profile
type SettingsRepository struct {
	buckets
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(store storage.Storage, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{buckets: newBuckets(store, logger)}
}

// Get returns the stored settings shallow-merged over the defaults
func (r *SettingsRepository) Get(ctx context.Context, profile string) models.AppSettings {
	settings := models.DefaultSettings()
	if !r.decode(ctx, profile, BucketSettings, &settings) {
		return models.DefaultSettings()
	}
	if settings.VisionModel == "" {
		settings.VisionModel = models.DefaultModel
	}
	if settings.RecipeModel == "" {
		settings.RecipeModel = models.DefaultModel
	}
	return settings
}

// Update merges the non-nil fields of upd into the stored settings
func (r *SettingsRepository) Update(ctx context.Context, profile string, upd models.SettingsUpdate) models.AppSettings {
	settings := r.Get(ctx, profile)
	upd.Apply(&settings)
	r.write(ctx, profile, BucketSettings, settings)
	return settings
}

// Replace overwrites the stored settings wholesale
func (r *SettingsRepository) Replace(ctx context.Context, profile string, settings models.AppSettings) {
	r.write(ctx, profile, BucketSettings, settings)
}
