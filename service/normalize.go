package service

import (
	"strconv"
	"strings"
	"time"

	"nutrisnap-backend/models"

	"github.com/google/uuid"
)

// normalizer turns model payloads into validated recipes
type normalizer struct {
	now           time.Time
	model         string
	detectedItems []string
	vegetarian    bool
	// ids already handed out in this batch
	seen map[string]bool
}

// normalize fills the gaps of p. It reports false for entries that are not
// usable recipes (no ingredients). Missing or repeated ids get a fresh uuid.
func (n *normalizer) normalize(p models.RecipePayload) (models.Recipe, bool) {
	if !hasText(p.Ingredients) {
		return models.Recipe{}, false
	}

	r := models.Recipe{
		ID:            strings.TrimSpace(deref(p.ID)),
		Title:         firstNonEmpty(deref(p.Title), deref(p.Name)),
		Description:   deref(p.Description),
		Cuisine:       deref(p.Cuisine),
		IsVegetarian:  n.vegetarian,
		Ingredients:   p.Ingredients,
		Steps:         p.Steps,
		Tags:          p.Tags,
		Source:        deref(p.Source),
		DetectedItems: n.detectedItems,
	}

	if r.ID == "" || n.seen[r.ID] {
		r.ID = uuid.NewString()
	}
	if n.seen != nil {
		n.seen[r.ID] = true
	}
	if r.Title == "" {
		r.Title = "Untitled recipe"
	}
	if p.IsVegetarian != nil {
		r.IsVegetarian = *p.IsVegetarian
	}
	if r.Steps == nil {
		r.Steps = p.Instructions
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.Source == "" {
		r.Source = n.model
	}

	r.CaloriesPerServing = firstNumber(p.CaloriesPerServing, p.Calories)
	r.ProteinGrams = firstNumber(p.ProteinGrams, p.Protein)
	r.CarbsGrams = firstNumber(p.CarbsGrams, p.Carbs)
	r.FatGrams = firstNumber(p.FatGrams, p.Fat)

	if p.PrepTime != nil {
		r.PrepTime = string(*p.PrepTime)
	}
	if p.CookTime != nil {
		r.CookTime = string(*p.CookTime)
	}
	if p.Servings != nil && *p.Servings > 0 {
		r.Servings = int(*p.Servings)
	}

	r.CreatedAt = n.now
	if p.CreatedAt != nil {
		if t, ok := parseTimestamp(string(*p.CreatedAt)); ok {
			r.CreatedAt = t
		}
	}

	return r, true
}

// parseTimestamp accepts RFC 3339 strings and unix milliseconds
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

func hasText(list []string) bool {
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func firstNumber(values ...*models.Number) *float64 {
	for _, v := range values {
		if v != nil {
			f := float64(*v)
			return &f
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
