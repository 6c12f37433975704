package models

import (
	"time"

	"github.com/google/uuid"
)

// File is one metadata row per stored blob. (UserID, Filename) is the lookup
// identity but carries no uniqueness constraint: re-uploading the same name
// adds a second row over the same on-disk path.
type File struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"` // owner
	Filename   string    `json:"filename" gorm:"not null"`               // sanitized name
	Path       string    `json:"path" gorm:"not null"`                   // absolute blob location
	Size       int64     `json:"size" gorm:"not null"`                   // bytes written at upload time
	UploadedAt time.Time `json:"uploadedAt" gorm:"autoCreateTime;index"`
}
