package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"nutrisnap-backend/metrics"
	"nutrisnap-backend/models"

	"go.uber.org/zap"
)

const keyCheckPrompt = "Say 'API key is valid' if you can read this."

// KeyCheckResult is the outcome of an API key check
type KeyCheckResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// KeyService checks API keys against the model endpoint
type KeyService struct {
	generator Generator
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewKeyService creates a new key service
func NewKeyService(generator Generator, logger *zap.Logger, m *metrics.Metrics) *KeyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = NewRESTGenerator(RESTWithLogger(logger))
	}
	return &KeyService{generator: generator, logger: logger.Named("keycheck"), metrics: m}
}

// TestAPIKey sends one minimal request with key. It never fails; the result
// carries the upstream message when the key is rejected. The answer's text
// is not inspected.
func (s *KeyService) TestAPIKey(ctx context.Context, key, model string) KeyCheckResult {
	key = strings.TrimSpace(key)
	if key == "" {
		return KeyCheckResult{Success: false, Error: "API key is required"}
	}
	if model == "" {
		model = models.DefaultModel
	}

	start := time.Now()
	_, err := s.generator.Generate(ctx, GenerateRequest{
		Model:       model,
		APIKey:      key,
		Prompt:      keyCheckPrompt,
		Temperature: 0,
	})
	s.metrics.ObserveUpstream("keycheck", model, transportStatus(err), time.Since(start))
	if err != nil {
		s.logger.Info("API key rejected", zap.String("model", model), zap.Error(err))
		return KeyCheckResult{Success: false, Error: upstreamMessage(err)}
	}
	return KeyCheckResult{Success: true}
}

func upstreamMessage(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Message != "" {
		return transportErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Failed to validate API key"
}
