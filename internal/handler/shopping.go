package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/ladle/internal/aisle"
	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/mealplan"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/shopping"
	"github.com/dukerupert/ladle/internal/store"
	"github.com/dukerupert/ladle/internal/websocket"
)

type ShoppingHandler struct {
	lists   *store.ShoppingStore
	plans   *store.MealPlanStore
	recipes *store.RecipeStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, ms *store.MealPlanStore, rs *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{lists: ss, plans: ms, recipes: rs, hub: hub, logger: logger}
}

type generateRequest struct {
	Week string `json:"week"`
}

// Generate handles POST /api/shopping-lists/generate. It rebuilds the
// week's list from the planned recipes, replacing any existing list for
// that week (manual edits included).
func (h *ShoppingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Week == "" {
		req.Week = time.Now().Format("2006-01-02")
	}

	weekStart, err := mealplan.WeekStart(req.Week)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be a YYYY-MM-DD date")
		return
	}
	weekEnd, err := mealplan.WeekEnd(weekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be a YYYY-MM-DD date")
		return
	}

	familyID := auth.FamilyID(r.Context())
	meals, err := h.plans.ListByDateRange(familyID, weekStart, weekEnd)
	if err != nil {
		h.logger.Error("list meal plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}

	recipes, err := h.weekRecipes(meals)
	if err != nil {
		h.logger.Error("load planned recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}

	items := shopping.Build(recipes)
	list, err := h.lists.Replace(familyID, weekStart, items, auth.ProfileID(r.Context()))
	if err != nil {
		h.logger.Error("save shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("shopping_list", "generated", list.ID, map[string]any{
		"week_start": weekStart,
	}))
	writeJSON(w, http.StatusCreated, list)
}

// weekRecipes resolves the distinct recipes referenced by a week's meal
// plan slots. Slots without a recipe contribute nothing.
func (h *ShoppingHandler) weekRecipes(meals []model.MealPlan) ([]model.Recipe, error) {
	seen := make(map[int64]bool)
	var recipes []model.Recipe
	for _, meal := range meals {
		if meal.RecipeID == nil || seen[*meal.RecipeID] {
			continue
		}
		seen[*meal.RecipeID] = true

		recipe, err := h.recipes.GetByID(*meal.RecipeID)
		if err != nil {
			return nil, err
		}
		if recipe == nil {
			continue
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, nil
}

// Get handles GET /api/shopping-lists?week=YYYY-MM-DD
func (h *ShoppingHandler) Get(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be a YYYY-MM-DD date")
		return
	}

	list, err := h.lists.GetByWeek(auth.FamilyID(r.Context()), weekStart)
	if err != nil {
		h.logger.Error("get shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "no shopping list for that week")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type updateItemsRequest struct {
	Items []model.ShoppingItem `json:"items"`
}

// UpdateItems handles PUT /api/shopping-lists/{id}/items. The whole item
// slice is replaced, which covers checking items off, manual additions,
// and removals.
func (h *ShoppingHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	familyID := auth.FamilyID(r.Context())
	list, err := h.lists.GetByID(id)
	if err != nil {
		h.logger.Error("get shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return
	}
	if list == nil || list.FamilyID != familyID {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return
	}

	var req updateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	for i := range req.Items {
		// Manually added items may arrive without an aisle.
		if req.Items[i].Aisle == "" {
			req.Items[i].Aisle = aisle.Assign(req.Items[i].Ingredient)
		}
	}

	updated, err := h.lists.UpdateItems(id, req.Items)
	if err != nil {
		h.logger.Error("update shopping list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update shopping list")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("shopping_list", "updated", id, nil))
	writeJSON(w, http.StatusOK, updated)
}
