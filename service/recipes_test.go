package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"nutrisnap-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// recipeArray renders n recipe objects without ids
func recipeArray(t *testing.T, n int) string {
	t.Helper()
	recipes := make([]map[string]any, n)
	for i := range recipes {
		recipes[i] = map[string]any{
			"title":              fmt.Sprintf("Recipe %d", i+1),
			"cuisine":            "Greek",
			"isVegetarian":       true,
			"caloriesPerServing": 400 + i,
			"proteinGrams":       20,
			"ingredients":        []string{"3 eggs", "  spinach, chopped  ", "feta"},
			"steps":              []string{"Whisk the eggs.", "Fold in spinach & feta."},
		}
	}
	b, err := json.Marshal(recipes)
	require.NoError(t, err)
	return string(b)
}

func newTestRecipeService(t *testing.T, g Generator, opts ...RecipeServiceOption) *RecipeService {
	base := []RecipeServiceOption{
		RecipeWithGenerator(g),
		RecipeWithClock(func() time.Time { return fixedNow }),
		RecipeWithLogger(zaptest.NewLogger(t)),
	}
	return NewRecipeService(append(base, opts...)...)
}

func TestGenerateRecipesMinimumCount(t *testing.T) {
	ctx := context.Background()

	t.Run("four of five fails", func(t *testing.T) {
		fake := newFakeGemini(t, http.StatusOK, candidateBody(t, recipeArray(t, 4)))
		svc := newTestRecipeService(t, fake.generator())

		recipes, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{
			Items: []string{"eggs"}, Preferences: models.DefaultPreferences(), Count: 5, APIKey: "k",
		})
		assert.Nil(t, recipes)

		var insufficient *InsufficientResultsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 4, insufficient.Got)
		assert.Equal(t, 5, insufficient.Want)
	})

	t.Run("five of five succeeds", func(t *testing.T) {
		fake := newFakeGemini(t, http.StatusOK, candidateBody(t, recipeArray(t, 5)))
		svc := newTestRecipeService(t, fake.generator())

		recipes, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{
			Items: []string{"eggs"}, Preferences: models.DefaultPreferences(), Count: 5, APIKey: "k",
		})
		require.NoError(t, err)
		require.Len(t, recipes, 5)
		for _, r := range recipes {
			assert.NotEmpty(t, r.ID)
		}
	})

	t.Run("fixed minimum overrides count", func(t *testing.T) {
		svc := newTestRecipeService(t, &stubGenerator{text: recipeArray(t, 3)}, RecipeWithMinResults(3))

		recipes, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{"eggs"}, Count: 5, APIKey: "k"})
		require.NoError(t, err)
		assert.Len(t, recipes, 3)
	})

	t.Run("default count applies", func(t *testing.T) {
		gen := &stubGenerator{text: recipeArray(t, 2)}
		svc := newTestRecipeService(t, gen, RecipeWithDefaultCount(2))

		recipes, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{"eggs"}, APIKey: "k"})
		require.NoError(t, err)
		assert.Len(t, recipes, 2)
		assert.Contains(t, gen.last.Prompt, "Generate exactly 2 diverse, practical recipes.")
	})

	t.Run("minimum above requested count raises the ask", func(t *testing.T) {
		gen := &stubGenerator{text: recipeArray(t, 4)}
		svc := newTestRecipeService(t, gen, RecipeWithMinResults(4))

		recipes, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{"eggs"}, Count: 2, APIKey: "k"})
		require.NoError(t, err)
		assert.Len(t, recipes, 4)
		assert.Contains(t, gen.last.Prompt, "Generate exactly 4 diverse, practical recipes.")
	})

	t.Run("entries without ingredients do not count", func(t *testing.T) {
		text := `[{"title":"a","ingredients":["x"]},{"title":"b","ingredients":[]},{"title":"c"},{"title":"d","ingredients":[" "]}]`
		svc := newTestRecipeService(t, &stubGenerator{text: text})

		_, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{"eggs"}, Count: 2, APIKey: "k"})
		var insufficient *InsufficientResultsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 1, insufficient.Got)
	})
}

func TestGenerateRecipesVegetarianScenario(t *testing.T) {
	payload := recipeArray(t, 5)
	answer := "Here are your recipes:\n```json\n" + payload + "\n```\nEnjoy!"
	fake := newFakeGemini(t, http.StatusOK, candidateBody(t, answer))
	svc := newTestRecipeService(t, fake.generator(), RecipeWithModel("gemini-2.5-flash"))

	prefs := models.DefaultPreferences()
	prefs.Diet = models.DietVegetarian

	recipes, err := svc.GenerateRecipes(context.Background(), GenerateRecipesRequest{
		Items:       []string{"eggs", "spinach", "feta"},
		Preferences: prefs,
		Count:       5,
		APIKey:      "AIza-test",
	})
	require.NoError(t, err)
	require.Len(t, recipes, 5)

	var sent []models.RecipePayload
	require.NoError(t, json.Unmarshal([]byte(payload), &sent))

	ids := map[string]bool{}
	for i, r := range recipes {
		assert.NotEmpty(t, r.ID)
		assert.False(t, ids[r.ID], "ids must be unique")
		ids[r.ID] = true

		assert.Equal(t, fixedNow, r.CreatedAt)
		assert.Equal(t, "gemini-2.5-flash", r.Source)
		assert.Equal(t, []string{"eggs", "spinach", "feta"}, r.DetectedItems)
		assert.Equal(t, sent[i].Ingredients, r.Ingredients, "ingredient text is untouched")
		assert.Equal(t, sent[i].Steps, r.Steps, "step text is untouched")
		assert.True(t, r.IsVegetarian)
		require.NotNil(t, r.CaloriesPerServing)
		assert.Equal(t, float64(400+i), *r.CaloriesPerServing)
	}

	calls := fake.calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Body.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Using these ingredients: eggs, spinach, feta")
	assert.Contains(t, prompt, "Diet: vegetarian only")
	assert.Equal(t, 0.8, calls[0].Body.GenerationConfig.Temperature)
	assert.Equal(t, 4096, calls[0].Body.GenerationConfig.MaxOutputTokens)
}

func TestGenerateRecipesForbidden(t *testing.T) {
	fake := newFakeGemini(t, http.StatusForbidden, `{"error":{"message":"API key not valid"}}`)
	svc := newTestRecipeService(t, fake.generator())

	recipes, err := svc.GenerateRecipes(context.Background(), GenerateRecipesRequest{
		Items: []string{"eggs"}, Count: 5, APIKey: "bad",
	})
	assert.Nil(t, recipes)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusForbidden, transportErr.Status)
	assert.Contains(t, transportErr.Error(), "API key not valid")
	assert.True(t, transportErr.Unauthorized())
}

func TestGenerateRecipesParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", "   "},
		{"no array", `{"title":"just one"}`},
		{"truncated", `[{"title":"a","ingredients":["x"]`},
		{"not recipes", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestRecipeService(t, &stubGenerator{text: tt.text})

			_, err := svc.GenerateRecipes(context.Background(), GenerateRecipesRequest{Items: []string{"eggs"}, APIKey: "k"})
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, "recipe", parseErr.Stage)
		})
	}
}

func TestGenerateRecipesInputErrors(t *testing.T) {
	gen := &stubGenerator{text: "[]"}
	svc := newTestRecipeService(t, gen)
	ctx := context.Background()

	_, err := svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{"eggs"}})
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))

	_, err = svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{" ", ""}, APIKey: "k"})
	assert.ErrorIs(t, err, ErrNoIngredients)

	_, err = svc.GenerateRecipes(ctx, GenerateRecipesRequest{Items: []string{"eggs"}, Count: models.MaxRecipeCount + 1, APIKey: "k"})
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.Equal(t, "INVALID_COUNT", ErrorCode(err))

	assert.Zero(t, gen.n)
}

func TestGenerateRecipesRepeatedIDs(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 5; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":"unique-id","title":"Recipe %d","ingredients":["eggs"]}`, i+1)
	}
	b.WriteString("]")
	svc := newTestRecipeService(t, &stubGenerator{text: b.String()})

	recipes, err := svc.GenerateRecipes(context.Background(), GenerateRecipesRequest{Items: []string{"eggs"}, Count: 5, APIKey: "k"})
	require.NoError(t, err)
	require.Len(t, recipes, 5)

	ids := make(map[string]bool)
	for _, r := range recipes {
		ids[r.ID] = true
	}
	assert.Len(t, ids, 5)
	assert.Equal(t, "unique-id", recipes[0].ID, "first use of an id is kept")
}

func TestNormalizeAliasesAndKeptFields(t *testing.T) {
	text := `[{
		"id": "kept-id",
		"name": "Spanakopita",
		"instructions": ["Layer", "Bake"],
		"ingredients": ["phyllo"],
		"calories": "~350 kcal",
		"protein": 25,
		"carbs": "40g",
		"fat": 12,
		"prepTime": 15,
		"cookTime": "30 min",
		"servings": "4",
		"source": "gemini_flash",
		"createdAt": "2025-01-02T03:04:05Z",
		"isVegetarian": false
	}]`
	svc := newTestRecipeService(t, &stubGenerator{text: text})

	prefs := models.DefaultPreferences()
	prefs.Diet = models.DietVegetarian
	recipes, err := svc.GenerateRecipes(context.Background(), GenerateRecipesRequest{
		Items: []string{"phyllo"}, Preferences: prefs, Count: 1, APIKey: "k",
	})
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, "kept-id", r.ID)
	assert.Equal(t, "Spanakopita", r.Title)
	assert.Equal(t, []string{"Layer", "Bake"}, r.Steps)
	assert.Equal(t, 350.0, *r.CaloriesPerServing)
	assert.Equal(t, 25.0, *r.ProteinGrams)
	assert.Equal(t, 40.0, *r.CarbsGrams)
	assert.Equal(t, 12.0, *r.FatGrams)
	assert.Equal(t, "15", r.PrepTime)
	assert.Equal(t, "30 min", r.CookTime)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, "gemini_flash", r.Source)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), r.CreatedAt.UTC())
	assert.False(t, r.IsVegetarian, "explicit flag wins over the diet")
}

func TestBuildRecipePrompt(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		prompt := BuildRecipePrompt([]string{"rice", "beans"}, models.DefaultPreferences(), 5)

		assert.Contains(t, prompt, "Using these ingredients: rice, beans\n")
		assert.Contains(t, prompt, "Generate exactly 5 diverse, practical recipes.")
		assert.Contains(t, prompt, "Diet: healthy and balanced")
		assert.Contains(t, prompt, "Any cuisine")
		assert.NotContains(t, prompt, "calories per serving")
		assert.NotContains(t, prompt, "Cooking time")
		assert.Contains(t, prompt, "Return JSON array only (no markdown)")
	})

	t.Run("full preferences", func(t *testing.T) {
		prefs := models.UserPreferences{
			Diet:                models.DietNonVegetarian,
			Cuisines:            []string{"Thai", "Mexican"},
			CalorieTarget:       550,
			UseCalorieTarget:    true,
			DietaryRestrictions: []string{"low-sodium"},
			Allergies:           []string{"peanuts"},
			SkillLevel:          models.SkillAdvanced,
			CookingTime:         models.CookingTimeQuick,
		}
		prompt := BuildRecipePrompt([]string{"chicken"}, prefs, 3)

		for _, want := range []string{
			"Diet: can include meat/fish",
			"Cuisines: Thai, Mexican",
			"Target ~550 calories per serving",
			"Dietary restrictions: low-sodium",
			"Allergies (never use): peanuts",
			"Skill level: advanced",
			"Cooking time: quick",
		} {
			assert.Contains(t, prompt, want)
		}
		assert.False(t, strings.Contains(prompt, "Any cuisine"))
	})

	t.Run("calorie target ignored when disabled", func(t *testing.T) {
		prefs := models.DefaultPreferences()
		prefs.CalorieTarget = 800
		assert.NotContains(t, BuildRecipePrompt([]string{"x"}, prefs, 5), "~800")
	})
}
