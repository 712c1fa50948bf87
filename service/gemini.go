package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public generative-language endpoint
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// InlineImage is an image sent alongside the prompt
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// GenerateRequest is one generateContent call
type GenerateRequest struct {
	Model           string
	APIKey          string
	Prompt          string
	Image           *InlineImage
	Temperature     float64
	MaxOutputTokens int
}

// Generator sends a prompt to a model and returns the text of its answer.
// Non-2xx answers are reported as *TransportError.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// RESTGenerator calls the generateContent REST endpoint directly
type RESTGenerator struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// RESTGeneratorOption is a functional option for RESTGenerator
type RESTGeneratorOption func(*RESTGenerator)

// RESTWithBaseURL points the generator at another host, e.g. a test server
func RESTWithBaseURL(baseURL string) RESTGeneratorOption {
	return func(g *RESTGenerator) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// RESTWithHTTPClient sets the HTTP client
func RESTWithHTTPClient(client *http.Client) RESTGeneratorOption {
	return func(g *RESTGenerator) {
		g.httpClient = client
	}
}

// RESTWithTimeout sets the per-call timeout of the default HTTP client
func RESTWithTimeout(timeout time.Duration) RESTGeneratorOption {
	return func(g *RESTGenerator) {
		if timeout > 0 {
			g.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// RESTWithLogger sets the logger
func RESTWithLogger(logger *zap.Logger) RESTGeneratorOption {
	return func(g *RESTGenerator) {
		g.logger = logger
	}
}

// NewRESTGenerator creates a new REST generator
func NewRESTGenerator(opts ...RESTGeneratorOption) *RESTGenerator {
	g := &RESTGenerator{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("gemini")
	return g
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// Generate performs one generateContent call
func (g *RESTGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	parts := []part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: req.Image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(req.Image.Data),
		}})
	}

	reqBody := generateContentRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", req.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("Gemini API error",
			zap.String("model", req.Model),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(bodyBytes, 1000)))
		return "", newTransportError(resp.StatusCode, bodyBytes)
	}

	var apiResp generateContentResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		g.logger.Warn("Failed to decode response", zap.ByteString("body", truncate(bodyBytes, 1000)))
		return "", &TransportError{Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", &TransportError{
			Status:  resp.StatusCode,
			Code:    apiResp.PromptFeedback.BlockReason,
			Message: "API blocked prompt: " + apiResp.PromptFeedback.BlockReason,
		}
	}

	if len(apiResp.Candidates) == 0 {
		return "", nil
	}

	// Only the first candidate is used; its text parts are concatenated.
	candidate := apiResp.Candidates[0]
	if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
		g.logger.Warn("Candidate finished early",
			zap.String("model", req.Model),
			zap.String("finishReason", candidate.FinishReason))
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

func newTransportError(status int, body []byte) *TransportError {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &TransportError{
			Status:  status,
			Code:    errResp.Error.Status,
			Message: errResp.Error.Message,
		}
	}
	return &TransportError{
		Status:  status,
		Message: fmt.Sprintf("API request failed: %d", status),
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// transportStatus labels err for metrics
func transportStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Status != 0 {
		return fmt.Sprintf("%d", transportErr.Status)
	}
	return strings.ToLower(ErrorCode(err))
}
