package handlers

import (
	"net/http"
	"strings"

	"nutrisnap-backend/models"
	"nutrisnap-backend/repository"

	"github.com/gin-gonic/gin"
)

// LibraryHandler handles favorites and recipe history
type LibraryHandler struct {
	favorites *repository.FavoriteRepository
	history   *repository.HistoryRepository
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(favorites *repository.FavoriteRepository, history *repository.HistoryRepository) *LibraryHandler {
	return &LibraryHandler{
		favorites: favorites,
		history:   history,
	}
}

// ListFavorites handles GET /api/favorites
func (h *LibraryHandler) ListFavorites(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, h.favorites.List(c.Request.Context(), profile))
}

// AddFavorite handles POST /api/favorites. Saving a recipe twice is not an
// error; the second call reports added=false.
func (h *LibraryHandler) AddFavorite(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	recipe.ID = strings.TrimSpace(recipe.ID)
	if recipe.ID == "" {
		respondError(c, http.StatusBadRequest, "MISSING_RECIPE_ID", "Recipe id is required")
		return
	}

	added := h.favorites.Add(c.Request.Context(), profile, recipe)

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondData(c, status, gin.H{
		"added":    added,
		"recipeId": recipe.ID,
	})
}

// GetFavorite handles GET /api/favorites/:id
func (h *LibraryHandler) GetFavorite(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	favorite, found := h.favorites.Get(c.Request.Context(), profile, c.Param("id"))
	if !found {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Favorite not found")
		return
	}
	respondData(c, http.StatusOK, favorite)
}

// RemoveFavorite handles DELETE /api/favorites/:id. Unknown ids are a no-op.
func (h *LibraryHandler) RemoveFavorite(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	h.favorites.Remove(ctx, profile, c.Param("id"))
	respondData(c, http.StatusOK, h.favorites.List(ctx, profile))
}

// ListHistory handles GET /api/history
func (h *LibraryHandler) ListHistory(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, h.history.List(c.Request.Context(), profile))
}

// ClearHistory handles DELETE /api/history
func (h *LibraryHandler) ClearHistory(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	h.history.Clear(c.Request.Context(), profile)
	respondData(c, http.StatusOK, []models.Recipe{})
}
