// Package mealplan holds the calendar math for weekly planning:
// resolving week boundaries and expanding recurring meals into the
// concrete slots they should fill.
package mealplan

import (
	"fmt"
	"time"

	"github.com/dukerupert/ladle/internal/model"
)

const dateLayout = "2006-01-02"

// WeekStart returns the Monday of the week containing date, as a
// YYYY-MM-DD string.
func WeekStart(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	// time.Weekday has Sunday = 0; shift so Monday anchors the week.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dateLayout), nil
}

// WeekDates returns the seven dates of the week beginning at weekStart.
func WeekDates(weekStart string) ([]string, error) {
	t, err := time.Parse(dateLayout, weekStart)
	if err != nil {
		return nil, fmt.Errorf("parse week start %q: %w", weekStart, err)
	}
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = t.AddDate(0, 0, i).Format(dateLayout)
	}
	return dates, nil
}

// WeekEnd returns the last date of the week beginning at weekStart.
func WeekEnd(weekStart string) (string, error) {
	dates, err := WeekDates(weekStart)
	if err != nil {
		return "", err
	}
	return dates[6], nil
}

// Slot is one (date, meal type, recipe) assignment produced by
// expanding recurring meals.
type Slot struct {
	Date     string
	MealType string
	RecipeID int64
}

// ExpandRecurring returns the slots that recurring meals should fill in
// the given week. Slots already assigned keep their recipe; a recurring
// meal never overwrites an explicit choice.
func ExpandRecurring(recurring []model.RecurringMeal, existing []model.MealPlan, weekStart string) ([]Slot, error) {
	dates, err := WeekDates(weekStart)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.Date+"|"+p.MealType] = true
	}

	byDay := make(map[int][]model.RecurringMeal)
	for _, r := range recurring {
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r)
	}

	var slots []Slot
	for _, date := range dates {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		for _, r := range byDay[int(t.Weekday())] {
			if taken[date+"|"+r.MealType] {
				continue
			}
			slots = append(slots, Slot{Date: date, MealType: r.MealType, RecipeID: r.RecipeID})
		}
	}
	return slots, nil
}
