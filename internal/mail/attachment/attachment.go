package attachment

import "time"

// Attachment records file metadata for a file attached to an email. The
// bytes themselves live in external storage; only metadata is tracked here.
type Attachment struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	EmailID   string    `json:"email_id"`
	CreatedAt time.Time `json:"created_at"`
}
