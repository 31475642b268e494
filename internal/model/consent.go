package model

import "time"

// Notification intent constants
const (
	IntentTellLatestTip = "tell_latest_tip"
	IntentTellTip       = "tell_tip"
)

// ConsentRecord is one user's standing consent to receive push delivery
// for a named intent. Records are append-only: written once when the user
// grants permission, removed only by an administrative action. The store
// does not enforce uniqueness of (user_id, intent): a user who consents
// twice gets two records, and fanout delivers once per record.
type ConsentRecord struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"created_at"`
}
