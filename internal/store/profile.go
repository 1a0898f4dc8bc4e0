package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

// ErrLastProfile is returned when a delete would leave a family with no
// profiles.
var ErrLastProfile = errors.New("cannot delete the last profile in a family")

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(scanner interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	err := scanner.Scan(&p.ID, &p.FamilyID, &p.Name, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const profileCols = `id, family_id, name, color, created_at, updated_at`

func (s *ProfileStore) Create(familyID int64, name, color string) (*model.Profile, error) {
	result, err := s.db.Exec(
		`INSERT INTO profiles (family_id, name, color) VALUES (?, ?, ?)`,
		familyID, name, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) GetByID(id int64) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) ListByFamily(familyID int64) ([]model.Profile, error) {
	rows, err := s.db.Query(
		`SELECT `+profileCols+` FROM profiles WHERE family_id = ? ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *ProfileStore) CountByFamily(familyID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM profiles WHERE family_id = ?`, familyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

func (s *ProfileStore) Update(id int64, name, color string) (*model.Profile, error) {
	_, err := s.db.Exec(
		`UPDATE profiles SET name = ?, color = ?, updated_at = datetime('now') WHERE id = ?`,
		name, color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

// DeleteWithReassign removes a profile in one transaction. It refuses to
// remove the family's last profile, and if the acting account currently
// has this profile selected, its selection is moved to another surviving
// profile before the delete. Either everything commits or nothing does.
func (s *ProfileStore) DeleteWithReassign(profileID, familyID, accountID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM profiles WHERE family_id = ?`, familyID,
	).Scan(&count); err != nil {
		return fmt.Errorf("count profiles: %w", err)
	}
	if count <= 1 {
		return ErrLastProfile
	}

	var selected sql.NullInt64
	if err := tx.QueryRow(
		`SELECT profile_id FROM accounts WHERE id = ?`, accountID,
	).Scan(&selected); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("get selection: %w", err)
	}

	if selected.Valid && selected.Int64 == profileID {
		var other int64
		if err := tx.QueryRow(
			`SELECT id FROM profiles WHERE family_id = ? AND id != ? ORDER BY created_at ASC LIMIT 1`,
			familyID, profileID,
		).Scan(&other); err != nil {
			return fmt.Errorf("find surviving profile: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE accounts SET profile_id = ?, updated_at = datetime('now') WHERE id = ?`,
			other, accountID,
		); err != nil {
			return fmt.Errorf("reassign selection: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, profileID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	return tx.Commit()
}
