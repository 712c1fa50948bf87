package repository

import (
	"context"

	"nutrisnap-backend/models"
	"nutrisnap-backend/storage"

	"go.uber.org/zap"
)

// MaxHistory is how many recently generated recipes are kept per profile
const MaxHistory = 20

// HistoryRepository keeps the most recently generated recipes
type HistoryRepository struct {
	buckets
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(store storage.Storage, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{buckets: newBuckets(store, logger)}
}

// List returns the history, most recent first
func (r *HistoryRepository) List(ctx context.Context, profile string) []models.Recipe {
	var history []models.Recipe
	if !r.decode(ctx, profile, BucketHistory, &history) || history == nil {
		return []models.Recipe{}
	}
	return history
}

// Add moves recipe to the front of the history, dropping any older entry
// with the same id and evicting the oldest entries beyond MaxHistory.
func (r *HistoryRepository) Add(ctx context.Context, profile string, recipe models.Recipe) {
	r.AddAll(ctx, profile, []models.Recipe{recipe})
}

// AddAll adds recipes in order, as if Add were called for each, with a
// single write. The last recipe ends up first.
func (r *HistoryRepository) AddAll(ctx context.Context, profile string, recipes []models.Recipe) {
	if len(recipes) == 0 {
		return
	}

	history := r.List(ctx, profile)
	for _, recipe := range recipes {
		history = pushHistory(history, recipe)
	}
	r.write(ctx, profile, BucketHistory, history)
}

// Clear empties the history
func (r *HistoryRepository) Clear(ctx context.Context, profile string) {
	r.remove(ctx, profile, BucketHistory)
}

func pushHistory(history []models.Recipe, recipe models.Recipe) []models.Recipe {
	next := make([]models.Recipe, 0, len(history)+1)
	next = append(next, recipe)
	for _, h := range history {
		if h.ID != recipe.ID {
			next = append(next, h)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	return next
}
