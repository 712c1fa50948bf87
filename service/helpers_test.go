package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini is an httptest stand-in for the generateContent endpoint
type fakeGemini struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []capturedRequest
}

type capturedRequest struct {
	Path   string
	APIKey string
	Body   generateContentRequest
}

func newFakeGemini(t *testing.T, status int, body string) *fakeGemini {
	t.Helper()

	f := &fakeGemini{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var req generateContentRequest
		assert.NoError(t, json.Unmarshal(raw, &req))

		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{
			Path:   r.URL.Path,
			APIKey: r.Header.Get("x-goog-api-key"),
			Body:   req,
		})
		status, body := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGemini) generator() *RESTGenerator {
	return NewRESTGenerator(RESTWithBaseURL(f.URL))
}

func (f *fakeGemini) calls() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

// candidateBody wraps text in a generateContent response
func candidateBody(t *testing.T, text string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			},
		},
	})
	require.NoError(t, err)
	return string(body)
}

// stubGenerator answers every call with a fixed text or error
type stubGenerator struct {
	text string
	err  error
	last GenerateRequest
	n    int
}

func (s *stubGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	s.last = req
	s.n++
	return s.text, s.err
}
