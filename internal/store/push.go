package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const pushSubCols = `id, family_id, endpoint, p256dh, auth, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(&sub.ID, &sub.FamilyID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *PushStore) CreateSubscription(familyID int64, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (family_id, endpoint, p256dh, auth)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET p256dh = excluded.p256dh, auth = excluded.auth`,
		familyID, endpoint, p256dh, auth,
	)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}
	// LastInsertId is unreliable on conflict update; re-query by endpoint.
	row := s.db.QueryRow(`SELECT `+pushSubCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByFamily(familyID int64) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT `+pushSubCols+` FROM push_subscriptions WHERE family_id = ? ORDER BY created_at DESC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) DeleteSubscription(id, familyID int64) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}

// ListFamilyIDs returns distinct family IDs that have push subscriptions.
func (s *PushStore) ListFamilyIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT DISTINCT family_id FROM push_subscriptions`)
	if err != nil {
		return nil, fmt.Errorf("list push family ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan family id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WasSent reports whether the (family, type, ref) notification already
// went out.
func (s *PushStore) WasSent(familyID int64, notifType, refID string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM push_sent WHERE family_id = ? AND notif_type = ? AND ref_id = ?`,
		familyID, notifType, refID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent: %w", err)
	}
	return count > 0, nil
}

func (s *PushStore) MarkSent(familyID int64, notifType, refID string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO push_sent (family_id, notif_type, ref_id) VALUES (?, ?, ?)`,
		familyID, notifType, refID,
	)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}
