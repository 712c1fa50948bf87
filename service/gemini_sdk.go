package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKGenerator calls the model through the generative-ai-go client. A
// client is created per call because each call may carry its own key.
type SDKGenerator struct {
	logger     *zap.Logger
	timeout    time.Duration
	clientOpts []option.ClientOption
}

// SDKGeneratorOption is a functional option for SDKGenerator
type SDKGeneratorOption func(*SDKGenerator)

// SDKWithLogger sets the logger
func SDKWithLogger(logger *zap.Logger) SDKGeneratorOption {
	return func(g *SDKGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// SDKWithTimeout bounds each call
func SDKWithTimeout(timeout time.Duration) SDKGeneratorOption {
	return func(g *SDKGenerator) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// SDKWithBaseURL points the client at a non-default endpoint. The default
// base URL leaves the client's own endpoint in place.
func SDKWithBaseURL(baseURL string) SDKGeneratorOption {
	return func(g *SDKGenerator) {
		if endpoint := sdkEndpoint(baseURL); endpoint != "" {
			g.clientOpts = append(g.clientOpts, option.WithEndpoint(endpoint))
		}
	}
}

// SDKWithClientOptions appends raw client options after the API key option
func SDKWithClientOptions(opts ...option.ClientOption) SDKGeneratorOption {
	return func(g *SDKGenerator) {
		g.clientOpts = append(g.clientOpts, opts...)
	}
}

// NewSDKGenerator creates a new SDK generator
func NewSDKGenerator(opts ...SDKGeneratorOption) *SDKGenerator {
	g := &SDKGenerator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("gemini-sdk")
	return g
}

// sdkEndpoint turns a base URL into the host:port the client dials. It
// returns "" for the default URL or one it cannot read.
func sdkEndpoint(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || baseURL == DefaultBaseURL {
		return ""
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "http" {
		return u.Host + ":80"
	}
	return u.Host + ":443"
}

// Generate performs one GenerateContent call
func (g *SDKGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	opts := append([]option.ClientOption{option.WithAPIKey(req.APIKey)}, g.clientOpts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", &TransportError{Message: fmt.Sprintf("failed to create client: %v", err), Err: err}
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", sdkTransportError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

func sdkTransportError(err error) *TransportError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &TransportError{Status: apiErr.Code, Message: msg, Err: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &TransportError{Message: blocked.Error(), Code: "BLOCKED", Err: err}
	}

	return &TransportError{Message: err.Error(), Err: err}
}
