package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var familyID, profileID sql.NullInt64
	err := scanner.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Name,
		&familyID, &profileID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		a.FamilyID = &familyID.Int64
	}
	if profileID.Valid {
		a.ProfileID = &profileID.Int64
	}
	return &a, nil
}

const accountCols = `id, email, password_hash, name, family_id, profile_id, created_at, updated_at`

func (s *AccountStore) Create(email, passwordHash, name string) (*model.Account, error) {
	result, err := s.db.Exec(
		`INSERT INTO accounts (email, password_hash, name) VALUES (?, ?, ?)`,
		email, passwordHash, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AccountStore) GetByID(id int64) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// SetProfile records the account's current profile selection.
func (s *AccountStore) SetProfile(accountID, profileID int64) error {
	_, err := s.db.Exec(
		`UPDATE accounts SET profile_id = ?, updated_at = datetime('now') WHERE id = ?`,
		profileID, accountID,
	)
	if err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

// ClearProfile returns the account to the "needs profile" state. The
// profile itself is untouched.
func (s *AccountStore) ClearProfile(accountID int64) error {
	_, err := s.db.Exec(
		`UPDATE accounts SET profile_id = NULL, updated_at = datetime('now') WHERE id = ?`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
