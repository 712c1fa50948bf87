package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"nutrisnap-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTestAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("valid key", func(t *testing.T) {
		fake := newFakeGemini(t, http.StatusOK, candidateBody(t, "API key is valid"))
		svc := NewKeyService(fake.generator(), zaptest.NewLogger(t), nil)

		result := svc.TestAPIKey(ctx, " AIza-good ", "")
		assert.Equal(t, KeyCheckResult{Success: true}, result)

		calls := fake.calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "AIza-good", calls[0].APIKey)
		assert.Equal(t, "/v1beta/models/"+models.DefaultModel+":generateContent", calls[0].Path)
		assert.Equal(t, keyCheckPrompt, calls[0].Body.Contents[0].Parts[0].Text)
	})

	t.Run("answer text is not inspected", func(t *testing.T) {
		svc := NewKeyService(&stubGenerator{text: "I can't help with that"}, nil, nil)
		assert.True(t, svc.TestAPIKey(ctx, "k", "gemini-2.0-flash").Success)
	})

	t.Run("rejected key reports upstream message verbatim", func(t *testing.T) {
		fake := newFakeGemini(t, http.StatusBadRequest,
			`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
		svc := NewKeyService(fake.generator(), zaptest.NewLogger(t), nil)

		result := svc.TestAPIKey(ctx, "bad", "gemini-2.5-flash")
		assert.False(t, result.Success)
		assert.Equal(t, "API key not valid. Please pass a valid API key.", result.Error)
	})

	t.Run("blank key makes no call", func(t *testing.T) {
		gen := &stubGenerator{}
		svc := NewKeyService(gen, nil, nil)

		result := svc.TestAPIKey(ctx, "   ", "")
		assert.Equal(t, KeyCheckResult{Success: false, Error: "API key is required"}, result)
		assert.Zero(t, gen.n)
	})

	t.Run("non transport error", func(t *testing.T) {
		svc := NewKeyService(&stubGenerator{err: errors.New("dial tcp: connection refused")}, nil, nil)

		result := svc.TestAPIKey(ctx, "k", "")
		assert.False(t, result.Success)
		assert.Equal(t, "dial tcp: connection refused", result.Error)
	})
}
