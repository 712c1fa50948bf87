package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTGeneratorRequestShape(t *testing.T) {
	fake := newFakeGemini(t, http.StatusOK, candidateBody(t, "hello"))

	text, err := fake.generator().Generate(context.Background(), GenerateRequest{
		Model:           "gemini-2.5-flash",
		APIKey:          "AIza-test",
		Prompt:          "describe",
		Image:           &InlineImage{MIMEType: "image/png", Data: []byte{1, 2, 3}},
		Temperature:     0.4,
		MaxOutputTokens: 1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	calls := fake.calls()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", call.Path)
	assert.Equal(t, "AIza-test", call.APIKey)
	require.Len(t, call.Body.Contents, 1)

	parts := call.Body.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "describe", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), parts[1].InlineData.Data)
	assert.Equal(t, 0.4, call.Body.GenerationConfig.Temperature)
	assert.Equal(t, 1024, call.Body.GenerationConfig.MaxOutputTokens)
}

func TestRESTGeneratorConcatenatesParts(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"[{\"a\":"},{"text":"1}]"}]}},{"content":{"parts":[{"text":"ignored"}]}}]}`
	fake := newFakeGemini(t, http.StatusOK, body)

	text, err := fake.generator().Generate(context.Background(), GenerateRequest{Model: "m", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1}]`, text)
}

func TestRESTGeneratorNoCandidates(t *testing.T) {
	fake := newFakeGemini(t, http.StatusOK, `{"candidates":[]}`)

	text, err := fake.generator().Generate(context.Background(), GenerateRequest{Model: "m", APIKey: "k"})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRESTGeneratorErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		wantCode   string
	}{
		{
			name:       "forbidden with upstream message",
			status:     http.StatusForbidden,
			body:       `{"error":{"code":403,"message":"API key not valid. Please pass a valid API key.","status":"PERMISSION_DENIED"}}`,
			wantStatus: http.StatusForbidden,
			wantMsg:    "API key not valid",
			wantCode:   "PERMISSION_DENIED",
		},
		{
			name:       "server error without body",
			status:     http.StatusInternalServerError,
			body:       ``,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "API request failed: 500",
		},
		{
			name:       "blocked prompt",
			status:     http.StatusOK,
			body:       `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantStatus: http.StatusOK,
			wantMsg:    "API blocked prompt: SAFETY",
			wantCode:   "SAFETY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGemini(t, tt.status, tt.body)

			_, err := fake.generator().Generate(context.Background(), GenerateRequest{Model: "m", APIKey: "k"})
			require.Error(t, err)

			var transportErr *TransportError
			require.True(t, errors.As(err, &transportErr))
			assert.Equal(t, tt.wantStatus, transportErr.Status)
			assert.Contains(t, transportErr.Message, tt.wantMsg)
			assert.Equal(t, tt.wantCode, transportErr.Code)
		})
	}
}

func TestRESTGeneratorNetworkFailure(t *testing.T) {
	fake := newFakeGemini(t, http.StatusOK, "")
	g := fake.generator()
	fake.Close()

	_, err := g.Generate(context.Background(), GenerateRequest{Model: "m", APIKey: "k"})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.Status)
}

func TestRESTGeneratorMissingKey(t *testing.T) {
	fake := newFakeGemini(t, http.StatusOK, candidateBody(t, "x"))

	_, err := fake.generator().Generate(context.Background(), GenerateRequest{Model: "m"})
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
	assert.Empty(t, fake.calls())
}
