package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"nutrisnap-backend/repository"
	"nutrisnap-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request headers understood by the API
const (
	ProfileHeader = "X-Profile-ID"
	APIKeyHeader  = "X-Goog-Api-Key"
)

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// profileID returns the profile named by the request. It writes a 400 and
// returns false when the header is malformed.
func profileID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.GetHeader(ProfileHeader))
	if id == "" {
		return repository.DefaultProfile, true
	}
	if !profilePattern.MatchString(id) {
		respondError(c, http.StatusBadRequest, "INVALID_PROFILE_ID",
			"X-Profile-ID may only contain letters, digits, '-' and '_' (max 64)")
		return "", false
	}
	return id, true
}

// KeyResolver picks the API key for a request: the request header, then the
// profile's stored key, then the server default.
type KeyResolver struct {
	keys     *repository.APIKeyRepository
	fallback string
}

// NewKeyResolver creates a new key resolver
func NewKeyResolver(keys *repository.APIKeyRepository, fallback string) *KeyResolver {
	return &KeyResolver{keys: keys, fallback: strings.TrimSpace(fallback)}
}

// Key source labels reported by GET /api/key
const (
	KeySourceHeader  = "header"
	KeySourceProfile = "profile"
	KeySourceServer  = "server"
	KeySourceNone    = "none"
)

// Resolve returns the key and where it came from
func (r *KeyResolver) Resolve(c *gin.Context, profile string) (string, string) {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key, KeySourceHeader
	}
	return r.stored(c.Request.Context(), profile)
}

func (r *KeyResolver) stored(ctx context.Context, profile string) (string, string) {
	if r.keys != nil {
		if key := r.keys.Get(ctx, profile); key != "" {
			return key, KeySourceProfile
		}
	}
	if r.fallback != "" {
		return r.fallback, KeySourceServer
	}
	return "", KeySourceNone
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondServiceError maps a service failure to a status and a message the
// user can act on
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	status := serviceErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	respondError(c, status, service.ErrorCode(err), service.FriendlyMessage(err))
}

func serviceErrorStatus(err error) int {
	var (
		configErr       *service.ConfigError
		transportErr    *service.TransportError
		parseErr        *service.ParseError
		insufficientErr *service.InsufficientResultsError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &configErr),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrNoIngredients),
		errors.Is(err, service.ErrInvalidCount):
		return http.StatusBadRequest
	case errors.As(err, &transportErr):
		if transportErr.Unauthorized() {
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	case errors.As(err, &parseErr), errors.As(err, &insufficientErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
