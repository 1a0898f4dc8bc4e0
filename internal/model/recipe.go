package model

import "time"

// Meal type constants. These are the only values accepted for recipe
// meal types, meal plan slots, and recurring meals.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

// ValidMealType reports whether t is one of breakfast, lunch, dinner.
func ValidMealType(t string) bool {
	return t == MealBreakfast || t == MealLunch || t == MealDinner
}

type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type Recipe struct {
	ID           int64        `json:"id"`
	FamilyID     int64        `json:"family_id"`
	Title        string       `json:"title"`
	PhotoURL     string       `json:"photo_url,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	PrepMinutes  *int         `json:"prep_minutes"`
	CookMinutes  *int         `json:"cook_minutes"`
	Servings     int          `json:"servings"`
	MealTypes    []string     `json:"meal_types"`
	Tags         []string     `json:"tags"`
	SourceURL    string       `json:"source_url,omitempty"`
	TrashedAt    *time.Time   `json:"trashed_at,omitempty"`
	CreatedBy    int64        `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Rating struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	RecipeID  int64     `json:"recipe_id"`
	Rating    string    `json:"rating"` // "up" or "down"
	CreatedAt time.Time `json:"created_at"`
}
