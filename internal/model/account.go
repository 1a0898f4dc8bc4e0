package model

import "time"

// Account is the authenticable identity. FamilyID and ProfileID are
// populated by the provisioner after registration; ProfileID is the
// account's current profile selection and may be cleared at any time.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	FamilyID     *int64    `json:"family_id"`
	ProfileID    *int64    `json:"profile_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
