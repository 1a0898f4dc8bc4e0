package store

import (
	"testing"

	"github.com/dukerupert/ladle/internal/database"
	"github.com/dukerupert/ladle/internal/model"
)

func setupRecipeTestDB(t *testing.T) (*RecipeStore, int64, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fs := NewFamilyStore(db)
	ps := NewProfileStore(db)
	family, err := fs.Create("The Smiths")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	profile, err := ps.Create(family.ID, "Alice", "#EF4444")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return NewRecipeStore(db), family.ID, profile.ID
}

func TestRecipeCRUD(t *testing.T) {
	rs, familyID, profileID := setupRecipeTestDB(t)

	prep := 15
	recipe, err := rs.Create(familyID, profileID, RecipeParams{
		Title: "Spaghetti Bolognese",
		Ingredients: []model.Ingredient{
			{Name: "spaghetti", Quantity: "400", Unit: "g"},
			{Name: "ground beef", Quantity: "500", Unit: "g"},
		},
		Instructions: []string{"Boil pasta", "Brown the beef", "Simmer sauce"},
		PrepMinutes:  &prep,
		Servings:     4,
		MealTypes:    []string{model.MealDinner},
		Tags:         []string{"pasta", "weeknight"},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if recipe.Title != "Spaghetti Bolognese" {
		t.Errorf("title = %q, want %q", recipe.Title, "Spaghetti Bolognese")
	}
	if len(recipe.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(recipe.Ingredients))
	}
	if recipe.Ingredients[0].Name != "spaghetti" {
		t.Errorf("ingredient[0] = %q, want %q", recipe.Ingredients[0].Name, "spaghetti")
	}
	if recipe.PrepMinutes == nil || *recipe.PrepMinutes != 15 {
		t.Errorf("prep_minutes = %v, want 15", recipe.PrepMinutes)
	}
	if recipe.CookMinutes != nil {
		t.Errorf("cook_minutes should be nil, got %v", *recipe.CookMinutes)
	}
	if recipe.TrashedAt != nil {
		t.Error("trashed_at should start nil")
	}

	// Update
	updated, err := rs.Update(recipe.ID, RecipeParams{
		Title:     "Spaghetti alla Bolognese",
		Servings:  6,
		MealTypes: []string{model.MealLunch, model.MealDinner},
	})
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if updated.Title != "Spaghetti alla Bolognese" {
		t.Errorf("updated title = %q", updated.Title)
	}
	if len(updated.MealTypes) != 2 {
		t.Errorf("expected 2 meal types, got %d", len(updated.MealTypes))
	}
	if len(updated.Ingredients) != 0 {
		t.Errorf("expected empty ingredients after update, got %d", len(updated.Ingredients))
	}

	// List
	recipes, err := rs.ListByFamily(familyID, false)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected 1 recipe, got %d", len(recipes))
	}
}

func TestRecipeGetByIDNotFound(t *testing.T) {
	rs, _, _ := setupRecipeTestDB(t)

	got, err := rs.GetByID(9999)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent recipe")
	}
}

func TestRecipeTrashRestorePurge(t *testing.T) {
	rs, familyID, profileID := setupRecipeTestDB(t)

	recipe, _ := rs.Create(familyID, profileID, RecipeParams{Title: "Toast", Servings: 1})

	if err := rs.Trash(recipe.ID); err != nil {
		t.Fatalf("trash recipe: %v", err)
	}

	active, _ := rs.ListByFamily(familyID, false)
	if len(active) != 0 {
		t.Errorf("trashed recipe still listed as active")
	}
	trashed, _ := rs.ListByFamily(familyID, true)
	if len(trashed) != 1 {
		t.Fatalf("expected 1 trashed recipe, got %d", len(trashed))
	}
	if trashed[0].TrashedAt == nil {
		t.Error("trashed_at should be set")
	}

	if err := rs.Restore(recipe.ID); err != nil {
		t.Fatalf("restore recipe: %v", err)
	}
	active, _ = rs.ListByFamily(familyID, false)
	if len(active) != 1 {
		t.Fatalf("expected 1 active recipe after restore, got %d", len(active))
	}
	if active[0].TrashedAt != nil {
		t.Error("trashed_at should be nil after restore")
	}

	rs.Trash(recipe.ID)
	if err := rs.Purge(recipe.ID); err != nil {
		t.Fatalf("purge recipe: %v", err)
	}
	got, _ := rs.GetByID(recipe.ID)
	if got != nil {
		t.Error("expected nil after purge")
	}
}

func TestRecipeListScopedToFamily(t *testing.T) {
	rs, familyID, profileID := setupRecipeTestDB(t)

	rs.Create(familyID, profileID, RecipeParams{Title: "Ours", Servings: 2})

	recipes, err := rs.ListByFamily(familyID+1, false)
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("expected 0 recipes for other family, got %d", len(recipes))
	}
}

func TestRecipeFavorites(t *testing.T) {
	rs, familyID, profileID := setupRecipeTestDB(t)

	recipe, _ := rs.Create(familyID, profileID, RecipeParams{Title: "Curry", Servings: 4})

	if err := rs.Favorite(profileID, recipe.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	// Favoriting twice is a no-op, not an error.
	if err := rs.Favorite(profileID, recipe.ID); err != nil {
		t.Fatalf("favorite again: %v", err)
	}

	ids, err := rs.ListFavoriteIDs(profileID)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(ids) != 1 || ids[0] != recipe.ID {
		t.Fatalf("favorites = %v, want [%d]", ids, recipe.ID)
	}

	if err := rs.Unfavorite(profileID, recipe.ID); err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	ids, _ = rs.ListFavoriteIDs(profileID)
	if len(ids) != 0 {
		t.Errorf("expected 0 favorites, got %d", len(ids))
	}
}

func TestRecipeRatings(t *testing.T) {
	rs, familyID, profileID := setupRecipeTestDB(t)

	recipe, _ := rs.Create(familyID, profileID, RecipeParams{Title: "Stew", Servings: 4})

	if err := rs.SetRating(profileID, recipe.ID, "up"); err != nil {
		t.Fatalf("set rating: %v", err)
	}
	up, down, err := rs.RatingCounts(recipe.ID)
	if err != nil {
		t.Fatalf("rating counts: %v", err)
	}
	if up != 1 || down != 0 {
		t.Errorf("counts = (%d, %d), want (1, 0)", up, down)
	}

	// Re-rating replaces, never double counts.
	if err := rs.SetRating(profileID, recipe.ID, "down"); err != nil {
		t.Fatalf("change rating: %v", err)
	}
	up, down, _ = rs.RatingCounts(recipe.ID)
	if up != 0 || down != 1 {
		t.Errorf("counts = (%d, %d), want (0, 1)", up, down)
	}

	if err := rs.ClearRating(profileID, recipe.ID); err != nil {
		t.Fatalf("clear rating: %v", err)
	}
	up, down, _ = rs.RatingCounts(recipe.ID)
	if up != 0 || down != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", up, down)
	}
}
