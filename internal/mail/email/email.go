package email

import "time"

// Email represents a stored message authored by a platform user.
type Email struct {
	ID       string     `json:"id"`
	Subject  string     `json:"subject"`
	Body     string     `json:"body"`
	SenderID string     `json:"sender_id"`
	// SenderName is populated in joined queries.
	SenderName string     `json:"sender_name,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
