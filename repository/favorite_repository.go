package repository

import (
	"context"
	"time"

	"nutrisnap-backend/models"
	"nutrisnap-backend/storage"

	"go.uber.org/zap"
)

// FavoriteRepository persists the recipes a profile saved
type FavoriteRepository struct {
	buckets
	now func() time.Time
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(store storage.Storage, logger *zap.Logger) *FavoriteRepository {
	return &FavoriteRepository{buckets: newBuckets(store, logger), now: time.Now}
}

// List returns the saved recipes, newest first
func (r *FavoriteRepository) List(ctx context.Context, profile string) []models.SavedRecipe {
	var favorites []models.SavedRecipe
	if !r.decode(ctx, profile, BucketFavorites, &favorites) || favorites == nil {
		return []models.SavedRecipe{}
	}
	return favorites
}

// Get returns the favorite with id, if present
func (r *FavoriteRepository) Get(ctx context.Context, profile, id string) (models.SavedRecipe, bool) {
	for _, f := range r.List(ctx, profile) {
		if f.ID == id {
			return f, true
		}
	}
	return models.SavedRecipe{}, false
}

// Add saves recipe unless a favorite with the same id already exists.
// It reports whether the recipe was newly added.
func (r *FavoriteRepository) Add(ctx context.Context, profile string, recipe models.Recipe) bool {
	if recipe.ID == "" {
		return false
	}

	favorites := r.List(ctx, profile)
	for _, f := range favorites {
		if f.ID == recipe.ID {
			return false
		}
	}

	saved := models.SavedRecipe{Recipe: recipe, SavedAt: r.now().UnixMilli()}
	favorites = append([]models.SavedRecipe{saved}, favorites...)
	r.write(ctx, profile, BucketFavorites, favorites)
	return true
}

// Remove drops the favorite with id. Removing an unknown id is a no-op.
func (r *FavoriteRepository) Remove(ctx context.Context, profile, id string) {
	favorites := r.List(ctx, profile)
	filtered := make([]models.SavedRecipe, 0, len(favorites))
	for _, f := range favorites {
		if f.ID != id {
			filtered = append(filtered, f)
		}
	}
	if len(filtered) == len(favorites) {
		return
	}
	r.write(ctx, profile, BucketFavorites, filtered)
}

// IsFavorite reports whether a recipe with id is saved
func (r *FavoriteRepository) IsFavorite(ctx context.Context, profile, id string) bool {
	_, ok := r.Get(ctx, profile, id)
	return ok
}
