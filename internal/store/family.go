package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	err := scanner.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const familyCols = `id, name, created_at, updated_at`

func (s *FamilyStore) Create(name string) (*model.Family, error) {
	result, err := s.db.Exec(`INSERT INTO families (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) Update(id int64, name string) (*model.Family, error) {
	_, err := s.db.Exec(
		`UPDATE families SET name = ?, updated_at = datetime('now') WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update family: %w", err)
	}
	return s.GetByID(id)
}
