package repository

import (
	"context"

	"nutrisnap-backend/models"
	"nutrisnap-backend/storage"

	"go.uber.org/zap"
)

// PreferencesRepository persists dietary preferences for a profile
type PreferencesRepository struct {
	buckets
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(store storage.Storage, logger *zap.Logger) *PreferencesRepository {
	return &PreferencesRepository{buckets: newBuckets(store, logger)}
}

// Get returns the stored preferences. Decoding on top of the defaults gives
// a shallow merge: fields present in storage win, missing ones keep defaults.
func (r *PreferencesRepository) Get(ctx context.Context, profile string) models.UserPreferences {
	prefs := models.DefaultPreferences()
	if !r.decode(ctx, profile, BucketPreferences, &prefs) {
		return models.DefaultPreferences()
	}
	prefs.Normalize()
	return prefs
}

// Update merges the non-nil fields of upd into the stored preferences
func (r *PreferencesRepository) Update(ctx context.Context, profile string, upd models.PreferencesUpdate) models.UserPreferences {
	prefs := r.Get(ctx, profile)
	upd.Apply(&prefs)
	prefs.Normalize()
	r.write(ctx, profile, BucketPreferences, prefs)
	return prefs
}

// Replace overwrites the stored preferences wholesale
func (r *PreferencesRepository) Replace(ctx context.Context, profile string, prefs models.UserPreferences) {
	prefs.Normalize()
	r.write(ctx, profile, BucketPreferences, prefs)
}
