package recipient

import "time"

// RecipientType labels how a recipient received an email (e.g. To, Cc, Bcc).
// Types are shared platform-wide; only administrators may change them.
type RecipientType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Recipient links a platform user to an email they received.
type Recipient struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	EmailID         string    `json:"email_id"`
	RecipientTypeID *string   `json:"recipient_type_id,omitempty"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`

	// TypeName and Username are populated in joined queries.
	TypeName string `json:"type_name,omitempty"`
	Username string `json:"username,omitempty"`
}
