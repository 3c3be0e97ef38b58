package models

import (
	"time"
)

type JustificationEvidence struct {
	ID uint64 `gorm:"primarykey" json:"id"`

	// The unique index caps evidence at one row per justification.
	JustificationID uint64 `gorm:"not null;uniqueIndex:idx_evidences_justification" json:"justification_id"`

	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	StoredPath string    `gorm:"type:varchar(500);not null" json:"-"`
	MimeType   string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	UploadedBy string    `gorm:"type:varchar(255);not null" json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`

	// Relations
	Justification TaskJustification `gorm:"foreignKey:JustificationID" json:"justification,omitempty"`
}
