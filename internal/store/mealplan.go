package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type MealPlanStore struct {
	db *sql.DB
}

func NewMealPlanStore(db *sql.DB) *MealPlanStore {
	return &MealPlanStore{db: db}
}

func scanMealPlan(scanner interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var m model.MealPlan
	var recipeID sql.NullInt64
	err := scanner.Scan(&m.ID, &m.FamilyID, &m.Date, &m.MealType, &recipeID, &m.AssignedBy, &m.AssignedAt)
	if err != nil {
		return nil, err
	}
	if recipeID.Valid {
		m.RecipeID = &recipeID.Int64
	}
	return &m, nil
}

const mealPlanCols = `id, family_id, date, meal_type, recipe_id, assigned_by, assigned_at`

// Assign upserts the slot for (family, date, mealType). A nil recipeID
// keeps the slot but marks it unplanned.
func (s *MealPlanStore) Assign(familyID int64, date, mealType string, recipeID *int64, assignedBy int64) (*model.MealPlan, error) {
	var rid sql.NullInt64
	if recipeID != nil {
		rid = sql.NullInt64{Int64: *recipeID, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO meal_plans (family_id, date, meal_type, recipe_id, assigned_by)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(family_id, date, meal_type)
		 DO UPDATE SET recipe_id = excluded.recipe_id,
		               assigned_by = excluded.assigned_by,
		               assigned_at = datetime('now')`,
		familyID, date, mealType, rid, assignedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("assign meal plan: %w", err)
	}

	return s.GetSlot(familyID, date, mealType)
}

func (s *MealPlanStore) GetByID(id int64) (*model.MealPlan, error) {
	row := s.db.QueryRow(`SELECT `+mealPlanCols+` FROM meal_plans WHERE id = ?`, id)
	m, err := scanMealPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan: %w", err)
	}
	return m, nil
}

func (s *MealPlanStore) GetSlot(familyID int64, date, mealType string) (*model.MealPlan, error) {
	row := s.db.QueryRow(
		`SELECT `+mealPlanCols+` FROM meal_plans WHERE family_id = ? AND date = ? AND meal_type = ?`,
		familyID, date, mealType,
	)
	m, err := scanMealPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan slot: %w", err)
	}
	return m, nil
}

// ListByDateRange returns a family's slots with start <= date <= end
// (dates are YYYY-MM-DD strings, so string comparison orders correctly).
func (s *MealPlanStore) ListByDateRange(familyID int64, start, end string) ([]model.MealPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+mealPlanCols+` FROM meal_plans
		 WHERE family_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, meal_type ASC`,
		familyID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []model.MealPlan
	for rows.Next() {
		m, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal plan: %w", err)
		}
		plans = append(plans, *m)
	}
	return plans, rows.Err()
}

func (s *MealPlanStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM meal_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal plan: %w", err)
	}
	return nil
}

func scanRecurringMeal(scanner interface{ Scan(...any) error }) (*model.RecurringMeal, error) {
	var m model.RecurringMeal
	err := scanner.Scan(&m.ID, &m.FamilyID, &m.DayOfWeek, &m.MealType, &m.RecipeID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const recurringMealCols = `id, family_id, day_of_week, meal_type, recipe_id, created_at`

// SetRecurring upserts the weekly slot (family, dayOfWeek, mealType).
func (s *MealPlanStore) SetRecurring(familyID int64, dayOfWeek int, mealType string, recipeID int64) (*model.RecurringMeal, error) {
	_, err := s.db.Exec(
		`INSERT INTO recurring_meals (family_id, day_of_week, meal_type, recipe_id)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(family_id, day_of_week, meal_type)
		 DO UPDATE SET recipe_id = excluded.recipe_id`,
		familyID, dayOfWeek, mealType, recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("set recurring meal: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+recurringMealCols+` FROM recurring_meals
		 WHERE family_id = ? AND day_of_week = ? AND meal_type = ?`,
		familyID, dayOfWeek, mealType,
	)
	return scanRecurringMeal(row)
}

func (s *MealPlanStore) ListRecurring(familyID int64) ([]model.RecurringMeal, error) {
	rows, err := s.db.Query(
		`SELECT `+recurringMealCols+` FROM recurring_meals
		 WHERE family_id = ? ORDER BY day_of_week ASC, meal_type ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recurring meals: %w", err)
	}
	defer rows.Close()

	var meals []model.RecurringMeal
	for rows.Next() {
		m, err := scanRecurringMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring meal: %w", err)
		}
		meals = append(meals, *m)
	}
	return meals, rows.Err()
}

func (s *MealPlanStore) GetRecurringByID(id int64) (*model.RecurringMeal, error) {
	row := s.db.QueryRow(`SELECT `+recurringMealCols+` FROM recurring_meals WHERE id = ?`, id)
	m, err := scanRecurringMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recurring meal: %w", err)
	}
	return m, nil
}

func (s *MealPlanStore) DeleteRecurring(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recurring_meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring meal: %w", err)
	}
	return nil
}
