package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var items string
	err := scanner.Scan(&l.ID, &l.FamilyID, &l.WeekStart, &items, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &l.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if l.Items == nil {
		l.Items = []model.ShoppingItem{}
	}
	return &l, nil
}

const shoppingListCols = `id, family_id, week_start, items, created_by, created_at, updated_at`

// Replace upserts the list for (family, weekStart) with the given items.
func (s *ShoppingStore) Replace(familyID int64, weekStart string, items []model.ShoppingItem, createdBy int64) (*model.ShoppingList, error) {
	if items == nil {
		items = []model.ShoppingItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO shopping_lists (family_id, week_start, items, created_by)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(family_id, week_start)
		 DO UPDATE SET items = excluded.items,
		               created_by = excluded.created_by,
		               updated_at = datetime('now')`,
		familyID, weekStart, string(data), createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("replace shopping list: %w", err)
	}
	return s.GetByWeek(familyID, weekStart)
}

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ShoppingStore) GetByWeek(familyID int64, weekStart string) (*model.ShoppingList, error) {
	row := s.db.QueryRow(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE family_id = ? AND week_start = ?`,
		familyID, weekStart,
	)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list by week: %w", err)
	}
	return l, nil
}

// UpdateItems overwrites a list's items, preserving its identity.
func (s *ShoppingStore) UpdateItems(id int64, items []model.ShoppingItem) (*model.ShoppingList, error) {
	if items == nil {
		items = []model.ShoppingItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE shopping_lists SET items = ?, updated_at = datetime('now') WHERE id = ?`,
		string(data), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping list items: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}
