package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigError reports missing configuration, such as an absent API key
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// ErrMissingAPIKey is returned when no API key could be resolved
var ErrMissingAPIKey = &ConfigError{Message: "API key is required. Please configure it in Settings."}

// ErrInvalidImage is returned when the uploaded image cannot be decoded
var ErrInvalidImage = errors.New("invalid image")

// ErrNoIngredients is returned when a recipe request names no ingredients
var ErrNoIngredients = errors.New("at least one ingredient is required")

// ErrInvalidCount is returned when a recipe request asks for more recipes
// than one batch can hold
var ErrInvalidCount = errors.New("invalid recipe count")

// TransportError is a failed call to the model endpoint. Status is the HTTP
// status, or zero when no response was received.
type TransportError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// APIError is the name the UI layer uses for TransportError
type APIError = TransportError

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("API request failed: %s", e.Message)
	}
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether upstream rejected the credentials
func (e *TransportError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ParseError means the model answered but the answer held no usable JSON
type ParseError struct {
	Stage  string // "vision" or "recipe"
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response format from %s model: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid response format from %s model: %s", e.Stage, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InsufficientResultsError means fewer valid recipes came back than required
type InsufficientResultsError struct {
	Got  int
	Want int
}

func (e *InsufficientResultsError) Error() string {
	return fmt.Sprintf("received %d recipes, fewer than %d. Please try again.", e.Got, e.Want)
}

const (
	invalidKeyMessage = "Your API key is invalid. Please check your API key in Settings and make sure it's from Google AI Studio."
	verifyKeyMessage  = "Please verify your Google AI API key in Settings is correct and has access to Gemini models."
)

// FriendlyMessage turns err into text suitable for the end user
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Message
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key") || strings.Contains(msg, "API_KEY_INVALID"):
		return invalidKeyMessage
	case strings.Contains(msg, "not valid"):
		return verifyKeyMessage
	default:
		return msg
	}
}

// ErrorCode classifies err for the HTTP error envelope and metrics labels
func ErrorCode(err error) string {
	var (
		configErr       *ConfigError
		transportErr    *TransportError
		parseErr        *ParseError
		insufficientErr *InsufficientResultsError
	)
	switch {
	case errors.As(err, &configErr):
		return "CONFIG_ERROR"
	case errors.Is(err, ErrInvalidImage):
		return "INVALID_IMAGE"
	case errors.Is(err, ErrNoIngredients):
		return "NO_INGREDIENTS"
	case errors.Is(err, ErrInvalidCount):
		return "INVALID_COUNT"
	case errors.As(err, &transportErr):
		return "TRANSPORT_ERROR"
	case errors.As(err, &parseErr):
		return "PARSE_ERROR"
	case errors.As(err, &insufficientErr):
		return "INSUFFICIENT_RESULTS"
	default:
		return "INTERNAL_ERROR"
	}
}
