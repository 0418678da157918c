package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
)

// Media captures metadata for uploaded assets. The row references the blob
// by storage_ref; retention of the blob itself is handled externally.
type Media struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfficerID  *uuid.UUID      `gorm:"column:officer_id;type:uuid"`
	Kind       enums.MediaKind `gorm:"column:kind;not null"`
	StorageRef string          `gorm:"column:storage_ref;not null;unique"`
	FileName   string          `gorm:"column:file_name;not null"`
	MimeType   string          `gorm:"column:mime_type;not null"`
	SizeBytes  int64           `gorm:"column:size_bytes;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
