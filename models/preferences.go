package models

import "fmt"

// Diet is the coarse diet category chosen on the settings screen
type Diet string

const (
	DietHealthy       Diet = "Healthy"
	DietVegetarian    Diet = "Vegetarian"
	DietNonVegetarian Diet = "Non-vegetarian"
)

// SkillLevel describes how ambitious generated recipes may be
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// CookingTime is the user's time budget for a recipe
type CookingTime string

const (
	CookingTimeQuick  CookingTime = "quick"
	CookingTimeMedium CookingTime = "medium"
	CookingTimeAny    CookingTime = "any"
)

// UserPreferences represents the dietary preferences used to steer recipe generation
type UserPreferences struct {
	Diet                Diet        `json:"diet"`
	Cuisines            []string    `json:"cuisines"`
	CalorieTarget       int         `json:"calorieTarget"`
	UseCalorieTarget    bool        `json:"useCalorieTarget"`
	DietaryRestrictions []string    `json:"dietaryRestrictions"`
	Allergies           []string    `json:"allergies"`
	SkillLevel          SkillLevel  `json:"skillLevel"`
	CookingTime         CookingTime `json:"cookingTime"`
}

// DefaultPreferences returns the preferences used when nothing is stored.
// Stored values are decoded on top of this value, so any field missing from
// storage keeps its default.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Diet:                DietHealthy,
		Cuisines:            []string{},
		CalorieTarget:       500,
		UseCalorieTarget:    false,
		DietaryRestrictions: []string{},
		Allergies:           []string{},
		SkillLevel:          SkillBeginner,
		CookingTime:         CookingTimeAny,
	}
}

// Normalize replaces nil lists with empty ones so clients always see arrays
func (p *UserPreferences) Normalize() {
	if p.Cuisines == nil {
		p.Cuisines = []string{}
	}
	if p.DietaryRestrictions == nil {
		p.DietaryRestrictions = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
}

// PreferencesUpdate is a partial update; nil fields are left untouched
type PreferencesUpdate struct {
	Diet                *Diet        `json:"diet"`
	Cuisines            []string     `json:"cuisines"`
	CalorieTarget       *int         `json:"calorieTarget"`
	UseCalorieTarget    *bool        `json:"useCalorieTarget"`
	DietaryRestrictions []string     `json:"dietaryRestrictions"`
	Allergies           []string     `json:"allergies"`
	SkillLevel          *SkillLevel  `json:"skillLevel"`
	CookingTime         *CookingTime `json:"cookingTime"`
}

// Apply merges the non-nil fields of u into p
func (u PreferencesUpdate) Apply(p *UserPreferences) {
	if u.Diet != nil {
		p.Diet = *u.Diet
	}
	if u.Cuisines != nil {
		p.Cuisines = u.Cuisines
	}
	if u.CalorieTarget != nil {
		p.CalorieTarget = *u.CalorieTarget
	}
	if u.UseCalorieTarget != nil {
		p.UseCalorieTarget = *u.UseCalorieTarget
	}
	if u.DietaryRestrictions != nil {
		p.DietaryRestrictions = u.DietaryRestrictions
	}
	if u.Allergies != nil {
		p.Allergies = u.Allergies
	}
	if u.SkillLevel != nil {
		p.SkillLevel = *u.SkillLevel
	}
	if u.CookingTime != nil {
		p.CookingTime = *u.CookingTime
	}
}

// Valid reports whether d is one of the known diets
func (d Diet) Valid() bool {
	switch d {
	case DietHealthy, DietVegetarian, DietNonVegetarian:
		return true
	}
	return false
}

// Valid reports whether l is empty or a known skill level
func (l SkillLevel) Valid() bool {
	switch l {
	case "", SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Valid reports whether t is empty or a known cooking time
func (t CookingTime) Valid() bool {
	switch t {
	case "", CookingTimeQuick, CookingTimeMedium, CookingTimeAny:
		return true
	}
	return false
}

// Validate rejects values the recipe prompt cannot render
func (p UserPreferences) Validate() error {
	if !p.Diet.Valid() {
		return fmt.Errorf("unknown diet %q", p.Diet)
	}
	if p.CalorieTarget < 0 {
		return fmt.Errorf("calorieTarget must not be negative, got %d", p.CalorieTarget)
	}
	if !p.SkillLevel.Valid() {
		return fmt.Errorf("unknown skillLevel %q", p.SkillLevel)
	}
	if !p.CookingTime.Valid() {
		return fmt.Errorf("unknown cookingTime %q", p.CookingTime)
	}
	return nil
}
