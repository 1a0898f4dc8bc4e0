package model

import "time"

// MealPlan is one slot in a family's calendar: at most one per
// (family, date, meal type). Date is a YYYY-MM-DD string.
type MealPlan struct {
	ID         int64     `json:"id"`
	FamilyID   int64     `json:"family_id"`
	Date       string    `json:"date"`
	MealType   string    `json:"meal_type"`
	RecipeID   *int64    `json:"recipe_id"`
	AssignedBy int64     `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

// RecurringMeal pins a recipe to a weekly slot. DayOfWeek follows
// time.Weekday numbering (0 = Sunday).
type RecurringMeal struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	DayOfWeek int       `json:"day_of_week"`
	MealType  string    `json:"meal_type"`
	RecipeID  int64     `json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}
