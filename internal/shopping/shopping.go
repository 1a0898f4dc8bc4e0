// Package shopping turns a week of planned recipes into a single
// grocery list: ingredients merged across recipes, quantities combined,
// items grouped by store aisle.
package shopping

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dukerupert/ladle/internal/aisle"
	"github.com/dukerupert/ladle/internal/model"
)

type mergedItem struct {
	name      string
	unit      string
	numeric   float64
	hasNumber bool
	extras    []string
	recipeIDs map[int64]bool
}

// Build aggregates the ingredients of the given recipes into shopping
// items. Ingredients merge by name and unit, case-insensitively;
// numeric quantities are summed, anything unparseable is kept verbatim
// alongside. Each item carries its source recipe when exactly one
// recipe contributed it.
func Build(recipes []model.Recipe) []model.ShoppingItem {
	merged := make(map[string]*mergedItem)
	var order []string

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			unit := strings.TrimSpace(ing.Unit)
			key := strings.ToLower(name) + "|" + strings.ToLower(unit)

			m, ok := merged[key]
			if !ok {
				m = &mergedItem{name: name, unit: unit, recipeIDs: make(map[int64]bool)}
				merged[key] = m
				order = append(order, key)
			}
			m.recipeIDs[r.ID] = true

			qty := strings.TrimSpace(ing.Quantity)
			if qty == "" {
				continue
			}
			if n, err := strconv.ParseFloat(qty, 64); err == nil {
				m.numeric += n
				m.hasNumber = true
			} else {
				m.extras = append(m.extras, qty)
			}
		}
	}

	items := make([]model.ShoppingItem, 0, len(order))
	for _, key := range order {
		m := merged[key]
		item := model.ShoppingItem{
			Ingredient: m.name,
			Quantity:   formatQuantity(m),
			Unit:       m.unit,
			Aisle:      aisle.Assign(m.name),
		}
		if len(m.recipeIDs) == 1 {
			for id := range m.recipeIDs {
				rid := id
				item.RecipeID = &rid
			}
		}
		items = append(items, item)
	}

	sortByAisle(items)
	return items
}

func formatQuantity(m *mergedItem) string {
	parts := make([]string, 0, 1+len(m.extras))
	if m.hasNumber {
		parts = append(parts, strconv.FormatFloat(m.numeric, 'f', -1, 64))
	}
	parts = append(parts, m.extras...)
	return strings.Join(parts, " + ")
}

var aisleRank = func() map[string]int {
	rank := make(map[string]int, len(aisle.Order))
	for i, a := range aisle.Order {
		rank[a] = i
	}
	return rank
}()

func sortByAisle(items []model.ShoppingItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := aisleRank[items[i].Aisle], aisleRank[items[j].Aisle]
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(items[i].Ingredient) < strings.ToLower(items[j].Ingredient)
	})
}
