package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/dukerupert/tipline/internal/model"
)

// InsertHook is invoked after a tip has been durably written. Hooks run on
// the caller's goroutine; anything slow should hand off to its own.
type InsertHook func(tip model.Tip)

type TipStore struct {
	db *sql.DB

	mu    sync.RWMutex
	hooks []InsertHook
}

func NewTipStore(db *sql.DB) *TipStore {
	return &TipStore{db: db}
}

// OnInsert registers a hook fired for every single-tip insert. Bulk
// replacement via ReplaceAll does not fire hooks.
func (s *TipStore) OnInsert(fn InsertHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Insert writes one tip and notifies registered hooks.
func (s *TipStore) Insert(category, tip, url string) (*model.Tip, error) {
	result, err := s.db.Exec(
		`INSERT INTO tips (category, tip, url) VALUES (?, ?, ?)`,
		category, tip, url,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tip: %w", err)
	}
	id, _ := result.LastInsertId()

	created, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("insert tip: row %d not found after insert", id)
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(*created)
	}

	return created, nil
}

func (s *TipStore) GetByID(id int64) (*model.Tip, error) {
	var t model.Tip
	err := s.db.QueryRow(
		`SELECT id, category, tip, url, created_at FROM tips WHERE id = ?`, id,
	).Scan(&t.ID, &t.Category, &t.Tip, &t.URL, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tip: %w", err)
	}
	return &t, nil
}

func (s *TipStore) ListAll() ([]model.Tip, error) {
	rows, err := s.db.Query(
		`SELECT id, category, tip, url, created_at FROM tips ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	defer rows.Close()
	return scanTips(rows)
}

func (s *TipStore) ListByCategory(category string) ([]model.Tip, error) {
	rows, err := s.db.Query(
		`SELECT id, category, tip, url, created_at FROM tips WHERE category = ? ORDER BY created_at DESC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("list tips by category: %w", err)
	}
	defer rows.Close()
	return scanTips(rows)
}

// Latest returns the most recently created tip, or nil when the store is empty.
func (s *TipStore) Latest() (*model.Tip, error) {
	var t model.Tip
	err := s.db.QueryRow(
		`SELECT id, category, tip, url, created_at FROM tips ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&t.ID, &t.Category, &t.Tip, &t.URL, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest tip: %w", err)
	}
	return &t, nil
}

func (s *TipStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tips: %w", err)
	}
	return n, nil
}

// ReplaceAll deletes every tip and inserts the given set in one transaction.
// Used by the administrative reset; insert hooks are not fired, so a reseed
// does not fan out a notification per row.
func (s *TipStore) ReplaceAll(tips []model.Tip) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tips`); err != nil {
		return fmt.Errorf("delete tips: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO tips (category, tip, url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tips {
		if _, err := stmt.Exec(t.Category, t.Tip, t.URL); err != nil {
			return fmt.Errorf("insert seed tip: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func scanTips(rows *sql.Rows) ([]model.Tip, error) {
	var tips []model.Tip
	for rows.Next() {
		var t model.Tip
		if err := rows.Scan(&t.ID, &t.Category, &t.Tip, &t.URL, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tip: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}
