// Package provision sets up new accounts: every registered account gets
// a family and a starter profile, created exactly once no matter how
// many times provisioning runs for it.
package provision

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	"github.com/dukerupert/ladle/internal/model"
)

type Provisioner struct {
	db *sql.DB
}

func NewProvisioner(db *sql.DB) *Provisioner {
	return &Provisioner{db: db}
}

// Provision creates a family and first profile for the account and
// links both. An account that already belongs to a family is left
// untouched, so re-running is always safe. The whole setup commits in
// one transaction.
func (p *Provisioner) Provision(accountID int64) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var email, name string
	var familyID sql.NullInt64
	err = tx.QueryRow(
		`SELECT email, name, family_id FROM accounts WHERE id = ?`, accountID,
	).Scan(&email, &name, &familyID)
	if err == sql.ErrNoRows {
		// Account gone; nothing to set up.
		return nil
	}
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	// Already provisioned.
	if familyID.Valid {
		return nil
	}

	familyName, profileName := derivedNames(email, name)

	res, err := tx.Exec(`INSERT INTO families (name) VALUES (?)`, familyName)
	if err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	famID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("family id: %w", err)
	}

	color := model.AvatarColors[rand.Intn(len(model.AvatarColors))]
	res, err = tx.Exec(
		`INSERT INTO profiles (family_id, name, color) VALUES (?, ?, ?)`,
		famID, profileName, color,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	profID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("profile id: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE accounts SET family_id = ?, profile_id = ?, updated_at = datetime('now') WHERE id = ?`,
		famID, profID, accountID,
	)
	if err != nil {
		return fmt.Errorf("link account: %w", err)
	}

	return tx.Commit()
}

// derivedNames picks the family and profile names from what the account
// gives us. The family is always named after the email's local part;
// only the profile prefers the display name.
func derivedNames(email, name string) (familyName, profileName string) {
	var local string
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}

	familyName = "My Family"
	if local != "" {
		familyName = local + "'s Family"
	}

	profileName = strings.TrimSpace(name)
	if profileName == "" {
		profileName = local
	}
	if profileName == "" {
		profileName = "Me"
	}
	return familyName, profileName
}
