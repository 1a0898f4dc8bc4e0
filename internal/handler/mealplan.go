package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/mealplan"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
	"github.com/dukerupert/ladle/internal/websocket"
)

type MealPlanHandler struct {
	plans   *store.MealPlanStore
	recipes *store.RecipeStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMealPlanHandler(ms *store.MealPlanStore, rs *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{plans: ms, recipes: rs, hub: hub, logger: logger}
}

// weekParam normalizes the ?week query param (any date within the week)
// to that week's Monday. Empty means the current week.
func weekParam(r *http.Request) (string, error) {
	date := r.URL.Query().Get("week")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return mealplan.WeekStart(date)
}

// GetWeek handles GET /api/meal-plans?week=YYYY-MM-DD
func (h *MealPlanHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be a YYYY-MM-DD date")
		return
	}
	weekEnd, err := mealplan.WeekEnd(weekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be a YYYY-MM-DD date")
		return
	}

	meals, err := h.plans.ListByDateRange(auth.FamilyID(r.Context()), weekStart, weekEnd)
	if err != nil {
		h.logger.Error("list meal plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list meal plans")
		return
	}
	if meals == nil {
		meals = []model.MealPlan{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"week_start": weekStart,
		"week_end":   weekEnd,
		"meals":      meals,
	})
}

type assignRequest struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	RecipeID *int64 `json:"recipe_id"`
}

// Assign handles POST /api/meal-plans. Assigning to an occupied slot
// replaces it.
func (h *MealPlanHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}
	if !model.ValidMealType(req.MealType) {
		writeError(w, http.StatusBadRequest, "meal_type must be breakfast, lunch, or dinner")
		return
	}

	familyID := auth.FamilyID(r.Context())
	if req.RecipeID != nil && !h.ownsRecipe(w, familyID, *req.RecipeID) {
		return
	}

	plan, err := h.plans.Assign(familyID, req.Date, req.MealType, req.RecipeID, auth.ProfileID(r.Context()))
	if err != nil {
		h.logger.Error("assign meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign meal")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("meal_plan", "assigned", plan.ID, map[string]any{
		"date": plan.Date, "meal_type": plan.MealType,
	}))
	writeJSON(w, http.StatusCreated, plan)
}

// Delete handles DELETE /api/meal-plans/{id}
func (h *MealPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	familyID := auth.FamilyID(r.Context())
	plan, err := h.plans.GetByID(id)
	if err != nil {
		h.logger.Error("get meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meal plan")
		return
	}
	if plan == nil || plan.FamilyID != familyID {
		writeError(w, http.StatusNotFound, "meal plan not found")
		return
	}

	if err := h.plans.Delete(id); err != nil {
		h.logger.Error("delete meal plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete meal plan")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("meal_plan", "deleted", id, map[string]any{
		"date": plan.Date, "meal_type": plan.MealType,
	}))
	w.WriteHeader(http.StatusNoContent)
}

// ListRecurring handles GET /api/meal-plans/recurring
func (h *MealPlanHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	recurring, err := h.plans.ListRecurring(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list recurring meals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recurring meals")
		return
	}
	if recurring == nil {
		recurring = []model.RecurringMeal{}
	}
	writeJSON(w, http.StatusOK, recurring)
}

type recurringRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	MealType  string `json:"meal_type"`
	RecipeID  int64  `json:"recipe_id"`
}

// SetRecurring handles PUT /api/meal-plans/recurring. One recurring meal
// per (day, meal type); setting an occupied slot replaces it.
func (h *MealPlanHandler) SetRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		writeError(w, http.StatusBadRequest, "day_of_week must be 0 (Sunday) through 6")
		return
	}
	if !model.ValidMealType(req.MealType) {
		writeError(w, http.StatusBadRequest, "meal_type must be breakfast, lunch, or dinner")
		return
	}

	familyID := auth.FamilyID(r.Context())
	if !h.ownsRecipe(w, familyID, req.RecipeID) {
		return
	}

	recurring, err := h.plans.SetRecurring(familyID, req.DayOfWeek, req.MealType, req.RecipeID)
	if err != nil {
		h.logger.Error("set recurring meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set recurring meal")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("recurring_meal", "set", recurring.ID, nil))
	writeJSON(w, http.StatusOK, recurring)
}

// DeleteRecurring handles DELETE /api/meal-plans/recurring/{id}
func (h *MealPlanHandler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	familyID := auth.FamilyID(r.Context())
	recurring, err := h.plans.GetRecurringByID(id)
	if err != nil {
		h.logger.Error("get recurring meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recurring meal")
		return
	}
	if recurring == nil || recurring.FamilyID != familyID {
		writeError(w, http.StatusNotFound, "recurring meal not found")
		return
	}

	if err := h.plans.DeleteRecurring(id); err != nil {
		h.logger.Error("delete recurring meal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recurring meal")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("recurring_meal", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type applyRecurringRequest struct {
	Week string `json:"week"`
}

// ApplyRecurring handles POST /api/meal-plans/recurring/apply. Recurring
// meals fill the week's empty slots; explicit assignments are never
// overwritten.
func (h *MealPlanHandler) ApplyRecurring(w http.ResponseWriter, r *http.Request) {
	var req applyRecurringRequest
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
	recurring, err := h.plans.ListRecurring(familyID)
	if err != nil {
		h.logger.Error("list recurring meals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply recurring meals")
		return
	}
	existing, err := h.plans.ListByDateRange(familyID, weekStart, weekEnd)
	if err != nil {
		h.logger.Error("list meal plans", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply recurring meals")
		return
	}

	slots, err := mealplan.ExpandRecurring(recurring, existing, weekStart)
	if err != nil {
		h.logger.Error("expand recurring meals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply recurring meals")
		return
	}

	profileID := auth.ProfileID(r.Context())
	created := make([]model.MealPlan, 0, len(slots))
	for _, slot := range slots {
		recipeID := slot.RecipeID
		plan, err := h.plans.Assign(familyID, slot.Date, slot.MealType, &recipeID, profileID)
		if err != nil {
			h.logger.Error("assign recurring meal", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to apply recurring meals")
			return
		}
		created = append(created, *plan)
	}

	if len(created) > 0 {
		h.hub.Broadcast(familyID, websocket.NewMessage("meal_plan", "recurring_applied", 0, map[string]any{
			"week_start": weekStart, "count": len(created),
		}))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week_start": weekStart,
		"created":    created,
	})
}

// ownsRecipe writes a 404 and returns false unless recipeID belongs to
// the caller's family.
func (h *MealPlanHandler) ownsRecipe(w http.ResponseWriter, familyID, recipeID int64) bool {
	recipe, err := h.recipes.GetByID(recipeID)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return false
	}
	if recipe == nil || recipe.FamilyID != familyID {
		writeError(w, http.StatusNotFound, "recipe not found")
		return false
	}
	return true
}
