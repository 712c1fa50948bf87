package handlers

import (
	"net/http"
	"time"

	"nutrisnap-backend/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router bundles everything the HTTP surface needs
type Router struct {
	Generation  *GenerationHandler
	Keys        *KeyHandler
	Preferences *PreferencesHandler
	Library     *LibraryHandler
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// Engine builds the gin engine with all routes registered
func (rt Router) Engine() *gin.Engine {
	logger := rt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), rt.Metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(rt.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/profiles", CreateProfile)

		api.POST("/analyze", rt.Generation.AnalyzeImage)
		api.POST("/recipes", rt.Generation.GenerateRecipes)

		api.POST("/keys/test", rt.Keys.TestKey)
		api.GET("/key", rt.Keys.GetKey)
		api.PUT("/key", rt.Keys.SaveKey)
		api.DELETE("/key", rt.Keys.DeleteKey)

		api.GET("/preferences", rt.Preferences.GetPreferences)
		api.PUT("/preferences", rt.Preferences.ReplacePreferences)
		api.PATCH("/preferences", rt.Preferences.UpdatePreferences)
		api.GET("/settings", rt.Preferences.GetSettings)
		api.PUT("/settings", rt.Preferences.ReplaceSettings)
		api.PATCH("/settings", rt.Preferences.UpdateSettings)

		api.GET("/favorites", rt.Library.ListFavorites)
		api.POST("/favorites", rt.Library.AddFavorite)
		api.GET("/favorites/:id", rt.Library.GetFavorite)
		api.DELETE("/favorites/:id", rt.Library.RemoveFavorite)
		api.GET("/history", rt.Library.ListHistory)
		api.DELETE("/history", rt.Library.ClearHistory)
	}

	return r
}

// CreateProfile handles POST /api/profiles. Clients keep the returned id
// and send it as X-Profile-ID.
func CreateProfile(c *gin.Context) {
	respondData(c, http.StatusCreated, gin.H{
		"profileId": uuid.NewString(),
	})
}

// RequestLogger logs one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIP", c.ClientIP()),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("Request served", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("Request served", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}
