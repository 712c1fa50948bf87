package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nutrisnap-backend/extract"
	"nutrisnap-backend/metrics"
	"nutrisnap-backend/models"

	"go.uber.org/zap"
)

// DefaultRecipeCount is how many recipes are requested when the caller
// does not say
const DefaultRecipeCount = 5

// RecipeService turns detected ingredients into recipes
type RecipeService struct {
	generator    Generator
	model        string
	defaultCount int
	minResults   int
	now          func() time.Time
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// RecipeServiceOption is a functional option for RecipeService
type RecipeServiceOption func(*RecipeService)

// RecipeWithGenerator sets the model transport
func RecipeWithGenerator(g Generator) RecipeServiceOption {
	return func(s *RecipeService) {
		s.generator = g
	}
}

// RecipeWithModel sets the model used when a request names none
func RecipeWithModel(model string) RecipeServiceOption {
	return func(s *RecipeService) {
		if model != "" {
			s.model = model
		}
	}
}

// RecipeWithDefaultCount sets how many recipes to ask for by default
func RecipeWithDefaultCount(n int) RecipeServiceOption {
	return func(s *RecipeService) {
		if n > 0 {
			s.defaultCount = n
		}
	}
}

// RecipeWithMinResults fixes the minimum number of recipes a batch must
// hold. Zero makes the requested count the minimum.
func RecipeWithMinResults(n int) RecipeServiceOption {
	return func(s *RecipeService) {
		if n >= 0 {
			s.minResults = n
		}
	}
}

// RecipeWithClock sets the time source used for createdAt
func RecipeWithClock(now func() time.Time) RecipeServiceOption {
	return func(s *RecipeService) {
		s.now = now
	}
}

// RecipeWithLogger sets the logger
func RecipeWithLogger(logger *zap.Logger) RecipeServiceOption {
	return func(s *RecipeService) {
		s.logger = logger
	}
}

// RecipeWithMetrics sets the metrics sink
func RecipeWithMetrics(m *metrics.Metrics) RecipeServiceOption {
	return func(s *RecipeService) {
		s.metrics = m
	}
}

// NewRecipeService creates a new recipe service
func NewRecipeService(opts ...RecipeServiceOption) *RecipeService {
	s := &RecipeService{
		model:        models.DefaultModel,
		defaultCount: DefaultRecipeCount,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = NewRESTGenerator(RESTWithLogger(s.logger))
	}
	s.logger = s.logger.Named("recipes")
	return s
}

// GenerateRecipesRequest represents a request to generate recipes
type GenerateRecipesRequest struct {
	Items       []string
	Preferences models.UserPreferences
	Count       int
	APIKey      string
	Model       string
}

// GenerateRecipes asks the recipe model for Count recipes built from Items.
// A batch with fewer valid recipes than required fails as a whole.
func (s *RecipeService) GenerateRecipes(ctx context.Context, req GenerateRecipesRequest) ([]models.Recipe, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	items := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, ErrNoIngredients
	}

	count := req.Count
	if count <= 0 {
		count = s.defaultCount
	}
	if count > models.MaxRecipeCount {
		return nil, fmt.Errorf("%w: at most %d recipes per request, got %d", ErrInvalidCount, models.MaxRecipeCount, count)
	}
	want := s.minResults
	if want == 0 {
		want = count
	}
	// never ask for fewer recipes than the batch must hold
	count = max(count, want)

	model := req.Model
	if model == "" {
		model = s.model
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, GenerateRequest{
		Model:           model,
		APIKey:          req.APIKey,
		Prompt:          BuildRecipePrompt(items, req.Preferences, count),
		Temperature:     0.8,
		MaxOutputTokens: 4096,
	})
	s.metrics.ObserveUpstream("recipes", model, transportStatus(err), time.Since(start))
	if err != nil {
		s.logger.Warn("Recipe call failed", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	payloads, err := parseRecipes(text)
	if err != nil {
		s.logger.Warn("Unreadable recipe response", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	n := &normalizer{
		now:           s.now(),
		model:         model,
		detectedItems: items,
		vegetarian:    req.Preferences.Diet == models.DietVegetarian,
		seen:          make(map[string]bool, len(payloads)),
	}
	recipes := make([]models.Recipe, 0, len(payloads))
	for _, p := range payloads {
		if r, ok := n.normalize(p); ok {
			recipes = append(recipes, r)
		}
	}

	if len(recipes) < want {
		s.logger.Warn("Too few recipes",
			zap.String("model", model),
			zap.Int("decoded", len(payloads)),
			zap.Int("valid", len(recipes)),
			zap.Int("want", want))
		return nil, &InsufficientResultsError{Got: len(recipes), Want: want}
	}

	s.metrics.AddRecipes(len(recipes))
	s.logger.Info("Recipes generated",
		zap.String("model", model),
		zap.Int("count", len(recipes)))
	return recipes, nil
}

func parseRecipes(text string) ([]models.RecipePayload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Stage: "recipe", Reason: "no response from recipe model"}
	}

	span, ok := extract.FirstArray(text)
	if !ok {
		return nil, &ParseError{Stage: "recipe", Reason: "no JSON array in response"}
	}

	var payloads []models.RecipePayload
	if err := json.Unmarshal([]byte(span.Text), &payloads); err != nil {
		return nil, &ParseError{Stage: "recipe", Reason: "malformed JSON array", Err: err}
	}
	return payloads, nil
}

// BuildRecipePrompt renders the recipe prompt for items and prefs
func BuildRecipePrompt(items []string, prefs models.UserPreferences, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Using these ingredients: %s\n\n", strings.Join(items, ", "))
	fmt.Fprintf(&b, "Generate exactly %d diverse, practical recipes.\n", count)
	fmt.Fprintf(&b, "Diet: %s\n", dietInfo(prefs.Diet))

	if len(prefs.Cuisines) > 0 {
		fmt.Fprintf(&b, "Cuisines: %s\n", strings.Join(prefs.Cuisines, ", "))
	} else {
		b.WriteString("Any cuisine\n")
	}
	if prefs.UseCalorieTarget && prefs.CalorieTarget > 0 {
		fmt.Fprintf(&b, "Target ~%d calories per serving\n", prefs.CalorieTarget)
	}
	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", strings.Join(prefs.DietaryRestrictions, ", "))
	}
	if len(prefs.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies (never use): %s\n", strings.Join(prefs.Allergies, ", "))
	}
	if prefs.SkillLevel != "" {
		fmt.Fprintf(&b, "Skill level: %s\n", prefs.SkillLevel)
	}
	if prefs.CookingTime != "" && prefs.CookingTime != models.CookingTimeAny {
		fmt.Fprintf(&b, "Cooking time: %s\n", prefs.CookingTime)
	}

	b.WriteString(`
Return JSON array only (no markdown):
[{
  "id": "unique-id",
  "title": "Recipe Name",
  "description": "Brief description",
  "cuisine": "cuisine-type",
  "isVegetarian": boolean,
  "caloriesPerServing": number (approx),
  "proteinGrams": number (approx),
  "carbsGrams": number (approx),
  "fatGrams": number (approx),
  "ingredients": ["item 1", "item 2"],
  "steps": ["step 1", "step 2"],
  "prepTime": "15 min",
  "cookTime": "30 min",
  "servings": number,
  "tags": ["tag"]
}]

Keep estimates marked as approximate. No medical/dietary claims.`)

	return b.String()
}

func dietInfo(diet models.Diet) string {
	switch diet {
	case models.DietVegetarian:
		return "vegetarian only"
	case models.DietNonVegetarian:
		return "can include meat/fish"
	default:
		return "healthy and balanced"
	}
}
