package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
)

func setupRecipeHandler(t *testing.T) (*RecipeHandler, *sql.DB, auth.AuthContext) {
	t.Helper()
	db := newTestDB(t)
	accountID, familyID, profileID := provisionedAccount(t, db, "cook@example.com", "Cook")
	h := NewRecipeHandler(store.NewRecipeStore(db), testHub(), testLogger())
	return h, db, auth.AuthContext{AccountID: accountID, FamilyID: familyID, ProfileID: profileID}
}

func createRecipe(t *testing.T, h *RecipeHandler, ac auth.AuthContext, title string) model.Recipe {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/recipes", map[string]any{
		"title":       title,
		"ingredients": []map[string]string{{"name": "Onion", "quantity": "2", "unit": ""}},
		"meal_types":  []string{model.MealDinner},
		"servings":    4,
	}, ac))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recipe status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[model.Recipe](t, rec)
}

func recipeIDRequest(method, suffix string, body any, ac auth.AuthContext, id int64) *http.Request {
	req := authedRequest(method, "/api/recipes/x"+suffix, body, ac)
	req.SetPathValue("id", strconv.FormatInt(id, 10))
	return req
}

func TestRecipeCreateValidation(t *testing.T) {
	h, _, ac := setupRecipeHandler(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"title": "  "}},
		{"bad meal type", map[string]any{"title": "Soup", "meal_types": []string{"brunch"}}},
		{"negative servings", map[string]any{"title": "Soup", "servings": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest("POST", "/api/recipes", tt.body, ac))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestRecipeCrossFamilyLooksMissing(t *testing.T) {
	h, db, ac := setupRecipeHandler(t)
	_, otherFamily, otherProfile := provisionedAccount(t, db, "rival@example.com", "Rival")
	theirs := createRecipe(t, h, auth.AuthContext{FamilyID: otherFamily, ProfileID: otherProfile}, "Secret Sauce")

	rec := httptest.NewRecorder()
	h.Get(rec, recipeIDRequest("GET", "", nil, ac, theirs.ID))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRecipeTrashRestorePurge(t *testing.T) {
	h, _, ac := setupRecipeHandler(t)
	recipe := createRecipe(t, h, ac, "Chili")

	rec := httptest.NewRecorder()
	h.Trash(rec, recipeIDRequest("DELETE", "", nil, ac, recipe.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("trash status = %d", rec.Code)
	}

	// Gone from the active list, present in the trash.
	rec = httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/recipes", nil, ac))
	if active := decodeBody[[]model.Recipe](t, rec); len(active) != 0 {
		t.Errorf("active recipes = %d, want 0", len(active))
	}
	rec = httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/recipes?trashed=true", nil, ac))
	if trash := decodeBody[[]model.Recipe](t, rec); len(trash) != 1 {
		t.Fatalf("trashed recipes = %d, want 1", len(trash))
	}

	rec = httptest.NewRecorder()
	h.Restore(rec, recipeIDRequest("POST", "/restore", nil, ac, recipe.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d", rec.Code)
	}
	restored := decodeBody[model.Recipe](t, rec)
	if restored.TrashedAt != nil {
		t.Error("TrashedAt still set after restore")
	}

	rec = httptest.NewRecorder()
	h.Trash(rec, recipeIDRequest("DELETE", "", nil, ac, recipe.ID))
	rec = httptest.NewRecorder()
	h.Purge(rec, recipeIDRequest("DELETE", "/purge", nil, ac, recipe.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("purge status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.Get(rec, recipeIDRequest("GET", "", nil, ac, recipe.ID))
	if rec.Code != http.StatusNotFound {
		t.Errorf("purged recipe still resolves, status = %d", rec.Code)
	}
}

func TestRecipeRatingFlow(t *testing.T) {
	h, _, ac := setupRecipeHandler(t)
	recipe := createRecipe(t, h, ac, "Tacos")

	rec := httptest.NewRecorder()
	h.Rate(rec, recipeIDRequest("PUT", "/rating", map[string]string{"rating": "meh"}, ac, recipe.ID))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Rate(rec, recipeIDRequest("PUT", "/rating", map[string]string{"rating": "up"}, ac, recipe.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("rate status = %d", rec.Code)
	}
	counts := decodeBody[map[string]int](t, rec)
	if counts["up"] != 1 || counts["down"] != 0 {
		t.Errorf("counts = %v, want up=1 down=0", counts)
	}

	// A profile holds one rating per recipe; re-rating replaces it.
	rec = httptest.NewRecorder()
	h.Rate(rec, recipeIDRequest("PUT", "/rating", map[string]string{"rating": "down"}, ac, recipe.ID))
	counts = decodeBody[map[string]int](t, rec)
	if counts["up"] != 0 || counts["down"] != 1 {
		t.Errorf("counts = %v, want up=0 down=1", counts)
	}

	rec = httptest.NewRecorder()
	h.ClearRating(rec, recipeIDRequest("DELETE", "/rating", nil, ac, recipe.ID))
	counts = decodeBody[map[string]int](t, rec)
	if counts["up"] != 0 || counts["down"] != 0 {
		t.Errorf("counts = %v, want zeros", counts)
	}
}

func TestRecipeFavorites(t *testing.T) {
	h, _, ac := setupRecipeHandler(t)
	recipe := createRecipe(t, h, ac, "Pancakes")

	rec := httptest.NewRecorder()
	h.Favorite(rec, recipeIDRequest("PUT", "/favorite", nil, ac, recipe.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("favorite status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListFavorites(rec, authedRequest("GET", "/api/recipes/favorites", nil, ac))
	resp := decodeBody[map[string][]int64](t, rec)
	if ids := resp["recipe_ids"]; len(ids) != 1 || ids[0] != recipe.ID {
		t.Errorf("favorites = %v, want [%d]", ids, recipe.ID)
	}

	rec = httptest.NewRecorder()
	h.Unfavorite(rec, recipeIDRequest("DELETE", "/favorite", nil, ac, recipe.ID))
	rec = httptest.NewRecorder()
	h.ListFavorites(rec, authedRequest("GET", "/api/recipes/favorites", nil, ac))
	resp = decodeBody[map[string][]int64](t, rec)
	if len(resp["recipe_ids"]) != 0 {
		t.Errorf("favorites = %v, want empty", resp["recipe_ids"])
	}
}
