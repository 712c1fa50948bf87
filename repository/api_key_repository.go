package repository

import (
	"context"
	"encoding/json"
	"strings"

	"nutrisnap-backend/storage"

	"go.uber.org/zap"
)

// sealedKey is the stored form of an API key when a sealer is configured
type sealedKey struct {
	Sealed []byte `json:"sealed"`
}

// APIKeyRepository stores the user's own Gemini API key
type APIKeyRepository struct {
	buckets
	sealer *Sealer
}

// APIKeyOption is a functional option for APIKeyRepository
type APIKeyOption func(*APIKeyRepository)

// WithSealer encrypts keys at rest
func WithSealer(sealer *Sealer) APIKeyOption {
	return func(r *APIKeyRepository) {
		r.sealer = sealer
	}
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(store storage.Storage, logger *zap.Logger, opts ...APIKeyOption) *APIKeyRepository {
	r := &APIKeyRepository{buckets: newBuckets(store, logger)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the stored key, or "" when none is stored or it cannot be read
func (r *APIKeyRepository) Get(ctx context.Context, profile string) string {
	data, ok := r.read(ctx, profile, BucketAPIKey)
	if !ok {
		return ""
	}

	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain
	}

	var sealed sealedKey
	if err := json.Unmarshal(data, &sealed); err != nil || len(sealed.Sealed) == 0 {
		r.logger.Warn("Discarding undecodable API key", zap.String("profile", profile))
		return ""
	}
	if r.sealer == nil {
		r.logger.Warn("Stored API key is sealed but no storage secret is configured",
			zap.String("profile", profile))
		return ""
	}

	key, err := r.sealer.Open(sealed.Sealed)
	if err != nil {
		r.logger.Warn("Failed to unseal API key", zap.String("profile", profile), zap.Error(err))
		return ""
	}
	return string(key)
}

// Save stores key after trimming it. A blank key clears the bucket.
func (r *APIKeyRepository) Save(ctx context.Context, profile, key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		r.Clear(ctx, profile)
		return
	}

	if r.sealer == nil {
		r.write(ctx, profile, BucketAPIKey, key)
		return
	}

	sealed, err := r.sealer.Seal([]byte(key))
	if err != nil {
		r.logger.Error("Failed to seal API key", zap.Error(err))
		return
	}
	r.write(ctx, profile, BucketAPIKey, sealedKey{Sealed: sealed})
}

// Clear removes the stored key
func (r *APIKeyRepository) Clear(ctx context.Context, profile string) {
	r.remove(ctx, profile, BucketAPIKey)
}
