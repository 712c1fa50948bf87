package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"nutrisnap-backend/storage"

	"go.uber.org/zap"
)

// Bucket names. Every profile gets its own copy of each bucket.
const (
	BucketSettings    = "nutrisnap_api_settings"
	BucketPreferences = "nutrisnap_preferences"
	BucketFavorites   = "nutrisnap_favorites"
	BucketHistory     = "nutrisnap_history"
	BucketAPIKey      = "nutrisnap_api_key"
)

// DefaultProfile is used when a request carries no profile id
const DefaultProfile = "default"

// BucketKey returns the storage key of bucket for profile
func BucketKey(profile, bucket string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return profile + "/" + bucket
}

// buckets wraps a Storage with the read-never-fails, write-never-throws
// policy shared by all repositories. Storage failures are logged and the
// caller sees defaults (reads) or a no-op (writes).
type buckets struct {
	store  storage.Storage
	logger *zap.Logger
}

func newBuckets(store storage.Storage, logger *zap.Logger) buckets {
	if store == nil {
		store = storage.NewNullStorage()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return buckets{store: store, logger: logger}
}

// read returns the raw document, or false when it is absent or unreadable
func (b buckets) read(ctx context.Context, profile, bucket string) ([]byte, bool) {
	data, err := b.store.Get(ctx, BucketKey(profile, bucket))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			b.logger.Warn("Failed to read bucket",
				zap.String("profile", profile),
				zap.String("bucket", bucket),
				zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// decode reads the bucket into dst. On absence or a decode failure it
// returns false; dst may then be partially written and must be discarded.
func (b buckets) decode(ctx context.Context, profile, bucket string, dst any) bool {
	data, ok := b.read(ctx, profile, bucket)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		b.logger.Warn("Discarding undecodable bucket",
			zap.String("profile", profile),
			zap.String("bucket", bucket),
			zap.Error(err))
		return false
	}
	return true
}

// write encodes v and stores it. Failures are logged, never returned.
func (b buckets) write(ctx context.Context, profile, bucket string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("Failed to encode bucket",
			zap.String("bucket", bucket),
			zap.Error(err))
		return
	}
	if err := b.store.Put(ctx, BucketKey(profile, bucket), data); err != nil {
		b.logger.Error("Failed to save bucket",
			zap.String("profile", profile),
			zap.String("bucket", bucket),
			zap.Error(err))
	}
}

func (b buckets) remove(ctx context.Context, profile, bucket string) {
	if err := b.store.Delete(ctx, BucketKey(profile, bucket)); err != nil {
		b.logger.Error("Failed to remove bucket",
			zap.String("profile", profile),
			zap.String("bucket", bucket),
			zap.Error(err))
	}
}
