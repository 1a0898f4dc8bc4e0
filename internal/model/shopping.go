package model

import "time"

type ShoppingItem struct {
	Ingredient string `json:"ingredient"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
	Aisle      string `json:"aisle"`
	Checked    bool   `json:"checked"`
	RecipeID   *int64 `json:"recipe_id,omitempty"`
}

// ShoppingList holds one week's items for a family. WeekStart is a
// YYYY-MM-DD string; one list per (family, week).
type ShoppingList struct {
	ID        int64          `json:"id"`
	FamilyID  int64          `json:"family_id"`
	WeekStart string         `json:"week_start"`
	Items     []ShoppingItem `json:"items"`
	CreatedBy int64          `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
