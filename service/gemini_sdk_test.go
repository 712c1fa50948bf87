package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestSDKTransportError(t *testing.T) {
	apiErr := &googleapi.Error{Code: http.StatusForbidden, Message: "API key not valid"}

	err := sdkTransportError(fmt.Errorf("generate: %w", apiErr))
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.Equal(t, "API key not valid", err.Message)
	assert.True(t, errors.Is(err, apiErr))

	err = sdkTransportError(errors.New("dial tcp: timeout"))
	assert.Zero(t, err.Status)
	assert.Equal(t, "dial tcp: timeout", err.Message)
}

func TestSDKEndpoint(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"", ""},
		{DefaultBaseURL, ""},
		{DefaultBaseURL + "/", ""},
		{"https://gemini.internal.example", "gemini.internal.example:443"},
		{"http://localhost:8081", "localhost:8081"},
		{"http://proxy", "proxy:80"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sdkEndpoint(tt.baseURL), tt.baseURL)
	}
}

func TestSDKGeneratorOptions(t *testing.T) {
	g := NewSDKGenerator(
		SDKWithTimeout(5*time.Second),
		SDKWithBaseURL("http://localhost:8081"),
	)
	assert.Equal(t, 5*time.Second, g.timeout)
	assert.Len(t, g.clientOpts, 1)

	g = NewSDKGenerator(SDKWithBaseURL(DefaultBaseURL), SDKWithTimeout(0))
	assert.Zero(t, g.timeout)
	assert.Empty(t, g.clientOpts)
}

func TestSDKGeneratorMissingKey(t *testing.T) {
	_, err := NewSDKGenerator().Generate(context.Background(), GenerateRequest{Model: "m"})
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
}
