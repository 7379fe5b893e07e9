package folder

import "time"

// Folder is a per-user grouping of emails. Names are unique per owner.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// EmailCount is populated in listing queries.
	EmailCount int `json:"email_count"`
}
