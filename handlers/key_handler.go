package handlers

import (
	"net/http"

	"nutrisnap-backend/repository"
	"nutrisnap-backend/service"

	"github.com/gin-gonic/gin"
)

// KeyHandler handles storing and probing Gemini API keys
type KeyHandler struct {
	keyService *service.KeyService
	keys       *repository.APIKeyRepository
	settings   *repository.SettingsRepository
	resolver   *KeyResolver
}

// NewKeyHandler creates a new key handler
func NewKeyHandler(
	keyService *service.KeyService,
	keys *repository.APIKeyRepository,
	settings *repository.SettingsRepository,
	resolver *KeyResolver,
) *KeyHandler {
	return &KeyHandler{
		keyService: keyService,
		keys:       keys,
		settings:   settings,
		resolver:   resolver,
	}
}

// TestKeyRequest is the body of POST /api/keys/test
type TestKeyRequest struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

// TestKey handles POST /api/keys/test. A rejected key is a successful
// request whose data reports success=false.
func (h *KeyHandler) TestKey(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var req TestKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	model := req.Model
	if model == "" {
		model = h.settings.Get(c.Request.Context(), profile).RecipeModel
	}

	result := h.keyService.TestAPIKey(c.Request.Context(), req.APIKey, model)
	respondData(c, http.StatusOK, result)
}

// KeyStatus is returned by GET /api/key. The key itself is never echoed.
type KeyStatus struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source"`
}

// GetKey handles GET /api/key
func (h *KeyHandler) GetKey(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	key, source := h.resolver.stored(c.Request.Context(), profile)
	respondData(c, http.StatusOK, KeyStatus{Configured: key != "", Source: source})
}

// SaveKeyRequest is the body of PUT /api/key
type SaveKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// SaveKey handles PUT /api/key. A blank key clears the stored one.
func (h *KeyHandler) SaveKey(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	var req SaveKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ctx := c.Request.Context()
	h.keys.Save(ctx, profile, req.APIKey)

	key, source := h.resolver.stored(ctx, profile)
	respondData(c, http.StatusOK, KeyStatus{Configured: key != "", Source: source})
}

// DeleteKey handles DELETE /api/key
func (h *KeyHandler) DeleteKey(c *gin.Context) {
	profile, ok := profileID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	h.keys.Clear(ctx, profile)

	key, source := h.resolver.stored(ctx, profile)
	respondData(c, http.StatusOK, KeyStatus{Configured: key != "", Source: source})
}
