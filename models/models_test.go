package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`350`, 350},
		{`12.5`, 12.5},
		{`"~350 kcal"`, 350},
		{`"25g"`, 25},
		{`"approx. 4.5"`, 4.5},
		{`"unknown"`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.want, float64(n))
		})
	}

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`{}`), &n))
}

func TestTextUnmarshal(t *testing.T) {
	var p struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"15 min","b":20,"c":null}`), &p))
	assert.Equal(t, Text("15 min"), p.A)
	assert.Equal(t, Text("20"), p.B)
	assert.Equal(t, Text(""), p.C)
}

func TestFoodItemUnmarshal(t *testing.T) {
	var items []FoodItem
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name":" eggs ","quantityHint":"6","confidence":0.9},
		{"name":"milk","quantity":"1 l","confidence":"80"},
		{"name":"feta","category":"dairy"}
	]`), &items))

	require.Len(t, items, 3)
	assert.Equal(t, "eggs", items[0].Name)
	assert.Equal(t, "eggs (6)", items[0].Label())
	assert.Equal(t, 0.9, *items[0].Confidence)
	assert.Equal(t, "milk (1 l)", items[1].Label())
	assert.Equal(t, 80.0, *items[1].Confidence)
	assert.Nil(t, items[2].Confidence)
	assert.Equal(t, "feta", items[2].Label())

	d := DetectionResult{IsFood: true, Items: items}
	assert.Equal(t, []string{"eggs", "milk", "feta"}, d.ItemNames())
}

func TestPreferencesShallowMerge(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		check  func(t *testing.T, p UserPreferences)
	}{
		{
			name:   "empty object keeps every default",
			stored: `{}`,
			check: func(t *testing.T, p UserPreferences) {
				assert.Equal(t, DefaultPreferences(), p)
			},
		},
		{
			name:   "present fields win",
			stored: `{"diet":"Non-vegetarian","useCalorieTarget":true}`,
			check: func(t *testing.T, p UserPreferences) {
				assert.Equal(t, DietNonVegetarian, p.Diet)
				assert.True(t, p.UseCalorieTarget)
				assert.Equal(t, 500, p.CalorieTarget)
				assert.Equal(t, SkillBeginner, p.SkillLevel)
			},
		},
		{
			name:   "explicit null list is normalized",
			stored: `{"cuisines":null,"calorieTarget":0}`,
			check: func(t *testing.T, p UserPreferences) {
				assert.Equal(t, []string{}, p.Cuisines)
				assert.Equal(t, 0, p.CalorieTarget)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreferences()
			require.NoError(t, json.Unmarshal([]byte(tt.stored), &p))
			p.Normalize()
			tt.check(t, p)
		})
	}
}

func TestPreferencesValidate(t *testing.T) {
	assert.NoError(t, DefaultPreferences().Validate())

	p := DefaultPreferences()
	p.Diet = "Keto"
	assert.Error(t, p.Validate())

	p = DefaultPreferences()
	p.CalorieTarget = -1
	assert.Error(t, p.Validate())

	p = DefaultPreferences()
	p.SkillLevel = "chef"
	assert.Error(t, p.Validate())

	p = DefaultPreferences()
	p.CookingTime = ""
	assert.NoError(t, p.Validate())
}

func TestSettingsUpdateIgnoresEmpty(t *testing.T) {
	s := DefaultSettings()
	empty := ""
	model := "gemini-2.5-pro"
	SettingsUpdate{VisionModel: &empty, RecipeModel: &model}.Apply(&s)
	assert.Equal(t, DefaultModel, s.VisionModel)
	assert.Equal(t, "gemini-2.5-pro", s.RecipeModel)
}
