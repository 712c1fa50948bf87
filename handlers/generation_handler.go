package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nutrisnap-backend/models"
	"nutrisnap-backend/repository"
	"nutrisnap-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps photo uploads when no limit is configured
const DefaultMaxUploadBytes = 10 << 20

// GenerationHandler handles the photo analysis and recipe endpoints
type GenerationHandler struct {
	vision      *service.VisionService
	recipes     *service.RecipeService
	settings    *repository.SettingsRepository
	preferences *repository.PreferencesRepository
	history     *repository.HistoryRepository
	keys        *KeyResolver
	maxUpload   int64
	logger      *zap.Logger
}

// GenerationHandlerOption is a functional option for GenerationHandler
type GenerationHandlerOption func(*GenerationHandler)

// WithMaxUploadBytes limits the size of analyzed photos
func WithMaxUploadBytes(n int64) GenerationHandlerOption {
	return func(h *GenerationHandler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// WithGenerationLogger sets the logger
func WithGenerationLogger(logger *zap.Logger) GenerationHandlerOption {
	return func(h *GenerationHandler) {
		h.logger = logger
	}
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(
	vision *service.VisionService,
	recipes *service.RecipeService,
	settings *repository.SettingsRepository,
	preferences *repository.PreferencesRepository,
	history *repository.HistoryRepository,
	keys *KeyResolver,
	opts ...GenerationHandlerOption,
) *GenerationHandler {
	h := &GenerationHandler{
		vision:      vision,
		recipes:     recipes,
		settings:    settings,
		preferences: preferences,
		history:     history,
		keys:        keys,
		maxUpload:   DefaultMaxUploadBytes,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AnalyzeImageRequest is the JSON form of POST /api/analyze
type AnalyzeImageRequest struct {
	Image    string `json:"image" binding:"required"`
	MIMEType string `json:"mimeType"`
	Model    string `json:"model"`
}

// AnalyzeImage handles POST /api/analyze. The photo is sent either as the
// multipart field "image" or as a data URL in a JSON body.
func (h *GenerationHandler) AnalyzeImage(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	req := service.AnalyzeImageRequest{}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			if isTooLarge(err) || c.Request.ContentLength > h.maxUpload {
				h.respondTooLarge(c)
				return
			}
			respondError(c, http.StatusBadRequest, "MISSING_IMAGE", "Image is required")
			return
		}
		if fileHeader.Size > h.maxUpload {
			h.respondTooLarge(c)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_IMAGE", "Failed to read image")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_IMAGE", "Failed to read image")
			return
		}
		req.Image = data
		req.MIMEType = fileHeader.Header.Get("Content-Type")
		req.Model = c.PostForm("model")
	} else {
		var body AnalyzeImageRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			if isTooLarge(err) {
				h.respondTooLarge(c)
				return
			}
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		req.ImageData = body.Image
		req.MIMEType = body.MIMEType
		req.Model = body.Model
	}

	if req.MIMEType == "application/octet-stream" {
		req.MIMEType = ""
	}
	if req.Model == "" {
		req.Model = h.settings.Get(c.Request.Context(), profile).VisionModel
	}
	req.APIKey, _ = h.keys.Resolve(c, profile)

	result, err := h.vision.AnalyzeImage(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GenerateRecipesRequest is the body of POST /api/recipes
type GenerateRecipesRequest struct {
	Items       Ingredients               `json:"items" binding:"required"`
	Count       int                       `json:"count"`
	Preferences *models.PreferencesUpdate `json:"preferences"`
	Model       string                    `json:"model"`
}

// GenerateRecipes handles POST /api/recipes. Generated recipes are added to
// the profile's history.
func (h *GenerationHandler) GenerateRecipes(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var body GenerateRecipesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if body.Count < 0 || body.Count > models.MaxRecipeCount {
		respondError(c, http.StatusBadRequest, "INVALID_COUNT",
			fmt.Sprintf("count must be between 0 and %d", models.MaxRecipeCount))
		return
	}

	ctx := c.Request.Context()

	// request preferences are merged over the profile's for this call only
	prefs := h.preferences.Get(ctx, profile)
	if body.Preferences != nil {
		body.Preferences.Apply(&prefs)
		prefs.Normalize()
		if err := prefs.Validate(); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PREFERENCES", err.Error())
			return
		}
	}

	model := body.Model
	if model == "" {
		model = h.settings.Get(ctx, profile).RecipeModel
	}
	apiKey, _ := h.keys.Resolve(c, profile)

	recipes, err := h.recipes.GenerateRecipes(ctx, service.GenerateRecipesRequest{
		Items:       body.Items,
		Preferences: prefs,
		Count:       body.Count,
		APIKey:      apiKey,
		Model:       model,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.history.AddAll(ctx, profile, recipes)

	respondData(c, http.StatusOK, recipes)
}

func (h *GenerationHandler) respondTooLarge(c *gin.Context) {
	respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		fmt.Sprintf("Image exceeds maximum of %d bytes", h.maxUpload))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// Ingredients is a list of ingredient labels. It decodes from plain
// strings or from detected food items, which are rendered with their
// quantity hint.
type Ingredients []string

// UnmarshalJSON implements json.Unmarshaler
func (in *Ingredients) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Ingredients, 0, len(raw))
	for i, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '"' {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return err
			}
			out = append(out, s)
			continue
		}

		var item models.FoodItem
		if err := json.Unmarshal(r, &item); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		out = append(out, item.Label())
	}
	*in = out
	return nil
}
