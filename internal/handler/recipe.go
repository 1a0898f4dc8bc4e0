package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
	"github.com/dukerupert/ladle/internal/websocket"
)

type RecipeHandler struct {
	recipes *store.RecipeStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: rs, hub: hub, logger: logger}
}

type recipeRequest struct {
	Title        string             `json:"title"`
	PhotoURL     string             `json:"photo_url"`
	Ingredients  []model.Ingredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	PrepMinutes  *int               `json:"prep_minutes"`
	CookMinutes  *int               `json:"cook_minutes"`
	Servings     int                `json:"servings"`
	MealTypes    []string           `json:"meal_types"`
	Tags         []string           `json:"tags"`
	SourceURL    string             `json:"source_url"`
}

func (req *recipeRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	for _, mt := range req.MealTypes {
		if !model.ValidMealType(mt) {
			return "meal types must be breakfast, lunch, or dinner"
		}
	}
	if req.Servings < 0 {
		return "servings cannot be negative"
	}
	return ""
}

func (req *recipeRequest) params() store.RecipeParams {
	return store.RecipeParams{
		Title:        req.Title,
		PhotoURL:     req.PhotoURL,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		PrepMinutes:  req.PrepMinutes,
		CookMinutes:  req.CookMinutes,
		Servings:     req.Servings,
		MealTypes:    req.MealTypes,
		Tags:         req.Tags,
		SourceURL:    req.SourceURL,
	}
}

// List handles GET /api/recipes. ?trashed=true lists the trash instead.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	trashed := r.URL.Query().Get("trashed") == "true"

	recipes, err := h.recipes.ListByFamily(auth.FamilyID(r.Context()), trashed)
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Create handles POST /api/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	familyID := auth.FamilyID(r.Context())
	recipe, err := h.recipes.Create(familyID, auth.ProfileID(r.Context()), req.params())
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("recipe", "created", recipe.ID, nil))
	writeJSON(w, http.StatusCreated, recipe)
}

// Update handles PUT /api/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.recipes.Update(recipe.ID, req.params())
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	h.hub.Broadcast(updated.FamilyID, websocket.NewMessage("recipe", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Trash handles DELETE /api/recipes/{id}. The recipe moves to the trash
// and can be restored; it stays on any meal plan slots it occupies.
func (h *RecipeHandler) Trash(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Trash(recipe.ID); err != nil {
		h.logger.Error("trash recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to trash recipe")
		return
	}

	h.hub.Broadcast(recipe.FamilyID, websocket.NewMessage("recipe", "trashed", recipe.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/recipes/{id}/restore
func (h *RecipeHandler) Restore(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Restore(recipe.ID); err != nil {
		h.logger.Error("restore recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to restore recipe")
		return
	}

	restored, err := h.recipes.GetByID(recipe.ID)
	if err != nil || restored == nil {
		writeError(w, http.StatusInternalServerError, "failed to restore recipe")
		return
	}

	h.hub.Broadcast(recipe.FamilyID, websocket.NewMessage("recipe", "restored", recipe.ID, nil))
	writeJSON(w, http.StatusOK, restored)
}

// Purge handles DELETE /api/recipes/{id}/purge. Permanent.
func (h *RecipeHandler) Purge(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Purge(recipe.ID); err != nil {
		h.logger.Error("purge recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.hub.Broadcast(recipe.FamilyID, websocket.NewMessage("recipe", "purged", recipe.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Favorite handles PUT /api/recipes/{id}/favorite
func (h *RecipeHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Favorite(auth.ProfileID(r.Context()), recipe.ID); err != nil {
		h.logger.Error("favorite recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to favorite recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unfavorite handles DELETE /api/recipes/{id}/favorite
func (h *RecipeHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Unfavorite(auth.ProfileID(r.Context()), recipe.ID); err != nil {
		h.logger.Error("unfavorite recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unfavorite recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFavorites handles GET /api/recipes/favorites. Returns the calling
// profile's favorite recipe IDs.
func (h *RecipeHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.recipes.ListFavoriteIDs(auth.ProfileID(r.Context()))
	if err != nil {
		h.logger.Error("list favorites", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"recipe_ids": ids})
}

type ratingRequest struct {
	Rating string `json:"rating"`
}

// Rate handles PUT /api/recipes/{id}/rating
func (h *RecipeHandler) Rate(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Rating != "up" && req.Rating != "down" {
		writeError(w, http.StatusBadRequest, "rating must be up or down")
		return
	}

	if err := h.recipes.SetRating(auth.ProfileID(r.Context()), recipe.ID, req.Rating); err != nil {
		h.logger.Error("set rating", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set rating")
		return
	}

	h.writeRatings(w, recipe.ID)
}

// ClearRating handles DELETE /api/recipes/{id}/rating
func (h *RecipeHandler) ClearRating(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}

	if err := h.recipes.ClearRating(auth.ProfileID(r.Context()), recipe.ID); err != nil {
		h.logger.Error("clear rating", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear rating")
		return
	}

	h.writeRatings(w, recipe.ID)
}

// Ratings handles GET /api/recipes/{id}/ratings
func (h *RecipeHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	recipe, ok := h.familyRecipe(w, r)
	if !ok {
		return
	}
	h.writeRatings(w, recipe.ID)
}

func (h *RecipeHandler) writeRatings(w http.ResponseWriter, recipeID int64) {
	up, down, err := h.recipes.RatingCounts(recipeID)
	if err != nil {
		h.logger.Error("rating counts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count ratings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"up": up, "down": down})
}

// familyRecipe resolves {id} to a recipe owned by the caller's family.
func (h *RecipeHandler) familyRecipe(w http.ResponseWriter, r *http.Request) (*model.Recipe, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	recipe, err := h.recipes.GetByID(id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return nil, false
	}
	if recipe == nil || recipe.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "recipe not found")
		return nil, false
	}
	return recipe, true
}
