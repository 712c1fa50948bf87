package models

const DefaultModel = "gemini-2.5-flash"

// MaxRecipeCount bounds the recipes asked for in one batch
const MaxRecipeCount = 10

// AppSettings holds which Gemini models serve the vision and recipe calls
type AppSettings struct {
	VisionModel string `json:"visionModel"`
	RecipeModel string `json:"recipeModel"`
}

// DefaultSettings returns the settings used when nothing is stored
func DefaultSettings() AppSettings {
	return AppSettings{
		VisionModel: DefaultModel,
		RecipeModel: DefaultModel,
	}
}

// SettingsUpdate is a partial update; nil fields are left untouched
type SettingsUpdate struct {
	VisionModel *string `json:"visionModel"`
	RecipeModel *string `json:"recipeModel"`
}

// Apply merges the non-nil fields of u into s
func (u SettingsUpdate) Apply(s *AppSettings) {
	if u.VisionModel != nil && *u.VisionModel != "" {
		s.VisionModel = *u.VisionModel
	}
	if u.RecipeModel != nil && *u.RecipeModel != "" {
		s.RecipeModel = *u.RecipeModel
	}
}
