package entity

import (
	"time"

	"github.com/google/uuid"
)

// Upload records a document applied to a forest.
type Upload struct {
	ID          uuid.UUID `json:"id"`
	ForestID    uuid.UUID `json:"forest_id"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	FileSize    int64     `json:"file_size"`
	ContentHash []byte    `json:"content_hash"`
	StoredPath  string    `json:"stored_path,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
