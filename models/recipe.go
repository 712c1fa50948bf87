package models

import (
	"time"
)

// Recipe represents a generated recipe after validation and normalization
type Recipe struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Cuisine            string    `json:"cuisine,omitempty"`
	IsVegetarian       bool      `json:"isVegetarian"`
	CaloriesPerServing *float64  `json:"caloriesPerServing,omitempty"`
	ProteinGrams       *float64  `json:"proteinGrams,omitempty"`
	CarbsGrams         *float64  `json:"carbsGrams,omitempty"`
	FatGrams           *float64  `json:"fatGrams,omitempty"`
	Ingredients        []string  `json:"ingredients"`
	Steps              []string  `json:"steps"`
	PrepTime           string    `json:"prepTime,omitempty"`
	CookTime           string    `json:"cookTime,omitempty"`
	Servings           int       `json:"servings,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	Source             string    `json:"source"`
	DetectedItems      []string  `json:"detectedItems,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// SavedRecipe is a recipe the user favorited
type SavedRecipe struct {
	Recipe
	SavedAt int64 `json:"savedAt"` // unix milliseconds
}

// RecipePayload is one recipe as returned by the model. Every field is
// optional and both prompt vocabularies are accepted ("name" or "title",
// "instructions" or "steps", "calories" or "caloriesPerServing", ...).
type RecipePayload struct {
	ID                 *string  `json:"id"`
	Title              *string  `json:"title"`
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Cuisine            *string  `json:"cuisine"`
	IsVegetarian       *bool    `json:"isVegetarian"`
	CaloriesPerServing *Number  `json:"caloriesPerServing"`
	Calories           *Number  `json:"calories"`
	ProteinGrams       *Number  `json:"proteinGrams"`
	Protein            *Number  `json:"protein"`
	CarbsGrams         *Number  `json:"carbsGrams"`
	Carbs              *Number  `json:"carbs"`
	FatGrams           *Number  `json:"fatGrams"`
	Fat                *Number  `json:"fat"`
	Ingredients        []string `json:"ingredients"`
	Steps              []string `json:"steps"`
	Instructions       []string `json:"instructions"`
	PrepTime           *Text    `json:"prepTime"`
	CookTime           *Text    `json:"cookTime"`
	Servings           *Number  `json:"servings"`
	Tags               []string `json:"tags"`
	Source             *string  `json:"source"`
	CreatedAt          *Text    `json:"createdAt"`
}
