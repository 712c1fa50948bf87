package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrisnap-backend/extract"
	"nutrisnap-backend/metrics"
	"nutrisnap-backend/models"

	"go.uber.org/zap"
)

const visionInstruction = `Identify edible items in this image. Return JSON only (no markdown): {"isFood":boolean, "items":[{"name":string, "confidence":number, "quantityHint":string}], "suggestions":[string]}. If uncertain or no food, set isFood=false.`

const defaultImageMIME = "image/jpeg"

// VisionService detects food items in photos
type VisionService struct {
	generator Generator
	model     string
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// VisionServiceOption is a functional option for VisionService
type VisionServiceOption func(*VisionService)

// VisionWithGenerator sets the model transport
func VisionWithGenerator(g Generator) VisionServiceOption {
	return func(s *VisionService) {
		s.generator = g
	}
}

// VisionWithModel sets the model used when a request names none
func VisionWithModel(model string) VisionServiceOption {
	return func(s *VisionService) {
		if model != "" {
			s.model = model
		}
	}
}

// VisionWithLogger sets the logger
func VisionWithLogger(logger *zap.Logger) VisionServiceOption {
	return func(s *VisionService) {
		s.logger = logger
	}
}

// VisionWithMetrics sets the metrics sink
func VisionWithMetrics(m *metrics.Metrics) VisionServiceOption {
	return func(s *VisionService) {
		s.metrics = m
	}
}

// NewVisionService creates a new vision service
func NewVisionService(opts ...VisionServiceOption) *VisionService {
	s := &VisionService{model: models.DefaultModel, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = NewRESTGenerator(RESTWithLogger(s.logger))
	}
	s.logger = s.logger.Named("vision")
	return s
}

// AnalyzeImageRequest represents a request to analyze a photo. Either Image
// (raw bytes) or ImageData (a data URL or bare base64 string) must be set.
type AnalyzeImageRequest struct {
	Image     []byte
	ImageData string
	MIMEType  string
	APIKey    string
	Model     string
}

// AnalyzeImage sends the photo to the vision model and returns what it found.
// isFood=false is a valid answer; an unreadable answer is a *ParseError.
func (s *VisionService) AnalyzeImage(ctx context.Context, req AnalyzeImageRequest) (*models.DetectionResult, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	image, err := decodeImage(req)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.model
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, GenerateRequest{
		Model:           model,
		APIKey:          req.APIKey,
		Prompt:          visionInstruction,
		Image:           image,
		Temperature:     0.4,
		MaxOutputTokens: 1024,
	})
	s.metrics.ObserveUpstream("vision", model, transportStatus(err), time.Since(start))
	if err != nil {
		s.logger.Warn("Vision call failed", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	result, err := parseDetection(text)
	if err != nil {
		s.logger.Warn("Unreadable vision response", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	s.metrics.AddDetectedItems(len(result.Items))
	s.logger.Info("Image analyzed",
		zap.String("model", model),
		zap.Bool("isFood", result.IsFood),
		zap.Int("items", len(result.Items)))
	return result, nil
}

// parseDetection pulls the first JSON object out of the model's text
func parseDetection(text string) (*models.DetectionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Stage: "vision", Reason: "no response from vision model"}
	}

	span, ok := extract.FirstObject(text)
	if !ok {
		return nil, &ParseError{Stage: "vision", Reason: "no JSON object in response"}
	}

	var result models.DetectionResult
	if err := json.Unmarshal([]byte(span.Text), &result); err != nil {
		return nil, &ParseError{Stage: "vision", Reason: "malformed JSON object", Err: err}
	}

	// an object without isFood is not a detection result
	var shape struct {
		IsFood *bool `json:"isFood"`
	}
	if err := json.Unmarshal([]byte(span.Text), &shape); err != nil || shape.IsFood == nil {
		return nil, &ParseError{Stage: "vision", Reason: "response is missing isFood", Err: err}
	}

	items := make([]models.FoodItem, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Name == "" {
			continue
		}
		if item.Confidence != nil {
			c := clamp01(*item.Confidence)
			item.Confidence = &c
		}
		items = append(items, item)
	}
	result.Items = items
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return &result, nil
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// decodeImage resolves the image bytes and MIME type of req
func decodeImage(req AnalyzeImageRequest) (*InlineImage, error) {
	if len(req.Image) > 0 {
		mime := req.MIMEType
		if mime == "" {
			mime = sniffImageType(req.Image)
		}
		return &InlineImage{MIMEType: mime, Data: req.Image}, nil
	}

	data := strings.TrimSpace(req.ImageData)
	if data == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidImage)
	}

	mime := req.MIMEType
	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		header := data[len("data:"):comma]
		if mime == "" {
			if semi := strings.IndexByte(header, ';'); semi >= 0 {
				header = header[:semi]
			}
			mime = header
		}
		data = data[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 data: %v", ErrInvalidImage, err)
	}
	if mime == "" {
		mime = sniffImageType(raw)
	}
	return &InlineImage{MIMEType: mime, Data: raw}, nil
}

func sniffImageType(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return defaultImageMIME
}
