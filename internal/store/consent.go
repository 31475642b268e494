package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/tipline/internal/model"
)

type ConsentStore struct {
	db *sql.DB
}

func NewConsentStore(db *sql.DB) *ConsentStore {
	return &ConsentStore{db: db}
}

// Insert records one consent. No uniqueness check: repeated grants from the
// same user accumulate as separate rows.
func (s *ConsentStore) Insert(userID, intent string) (*model.ConsentRecord, error) {
	result, err := s.db.Exec(
		`INSERT INTO consents (user_id, intent) VALUES (?, ?)`,
		userID, intent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert consent: %w", err)
	}
	id, _ := result.LastInsertId()
	return s.GetByID(id)
}

func (s *ConsentStore) GetByID(id int64) (*model.ConsentRecord, error) {
	var r model.ConsentRecord
	err := s.db.QueryRow(
		`SELECT id, user_id, intent, created_at FROM consents WHERE id = ?`, id,
	).Scan(&r.ID, &r.UserID, &r.Intent, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get consent: %w", err)
	}
	return &r, nil
}

func (s *ConsentStore) ListByIntent(intent string) ([]model.ConsentRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, intent, created_at FROM consents WHERE intent = ? ORDER BY id`,
		intent,
	)
	if err != nil {
		return nil, fmt.Errorf("list consents by intent: %w", err)
	}
	defer rows.Close()

	var records []model.ConsentRecord
	for rows.Next() {
		var r model.ConsentRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Intent, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes one consent record. Administrative use only.
func (s *ConsentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM consents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete consent: %w", err)
	}
	return nil
}
