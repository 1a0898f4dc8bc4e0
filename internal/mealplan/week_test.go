package mealplan

import (
	"testing"

	"github.com/dukerupert/ladle/internal/model"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-08-31", "2026-08-31"}, // Monday maps to itself
		{"2026-09-01", "2026-08-31"}, // Tuesday
		{"2026-09-06", "2026-08-31"}, // Sunday belongs to the preceding Monday
		{"2026-09-07", "2026-09-07"}, // next Monday
	}
	for _, tt := range tests {
		got, err := WeekStart(tt.date)
		if err != nil {
			t.Fatalf("WeekStart(%q): %v", tt.date, err)
		}
		if got != tt.want {
			t.Errorf("WeekStart(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestWeekStartBadDate(t *testing.T) {
	if _, err := WeekStart("not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestWeekDates(t *testing.T) {
	dates, err := WeekDates("2026-08-31")
	if err != nil {
		t.Fatalf("WeekDates: %v", err)
	}
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	if dates[0] != "2026-08-31" {
		t.Errorf("first = %q, want 2026-08-31", dates[0])
	}
	if dates[6] != "2026-09-06" {
		t.Errorf("last = %q, want 2026-09-06", dates[6])
	}

	end, err := WeekEnd("2026-08-31")
	if err != nil {
		t.Fatalf("WeekEnd: %v", err)
	}
	if end != "2026-09-06" {
		t.Errorf("WeekEnd = %q, want 2026-09-06", end)
	}
}

func TestExpandRecurringFillsEmptySlots(t *testing.T) {
	recurring := []model.RecurringMeal{
		{DayOfWeek: 2, MealType: model.MealDinner, RecipeID: 10}, // Tuesday
		{DayOfWeek: 6, MealType: model.MealBreakfast, RecipeID: 20}, // Saturday
	}

	slots, err := ExpandRecurring(recurring, nil, "2026-08-31")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Date != "2026-09-01" || slots[0].MealType != model.MealDinner || slots[0].RecipeID != 10 {
		t.Errorf("slot[0] = %+v, want Tuesday dinner recipe 10", slots[0])
	}
	if slots[1].Date != "2026-09-05" || slots[1].RecipeID != 20 {
		t.Errorf("slot[1] = %+v, want Saturday breakfast recipe 20", slots[1])
	}
}

func TestExpandRecurringSkipsAssignedSlots(t *testing.T) {
	recurring := []model.RecurringMeal{
		{DayOfWeek: 2, MealType: model.MealDinner, RecipeID: 10},
	}
	soup := int64(99)
	existing := []model.MealPlan{
		{Date: "2026-09-01", MealType: model.MealDinner, RecipeID: &soup},
	}

	slots, err := ExpandRecurring(recurring, existing, "2026-08-31")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("recurring meal overwrote an explicit assignment: %+v", slots)
	}
}

func TestExpandRecurringDifferentMealTypeStillFills(t *testing.T) {
	recurring := []model.RecurringMeal{
		{DayOfWeek: 2, MealType: model.MealDinner, RecipeID: 10},
	}
	oats := int64(5)
	existing := []model.MealPlan{
		{Date: "2026-09-01", MealType: model.MealBreakfast, RecipeID: &oats},
	}

	slots, err := ExpandRecurring(recurring, existing, "2026-08-31")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].MealType != model.MealDinner {
		t.Errorf("meal type = %q, want dinner", slots[0].MealType)
	}
}
