package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
)

// Violation is one recorded offence, always owned by exactly one officer.
// Media is referenced by locator string, never owned: deleting a row leaves
// the underlying file untouched.
type Violation struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfficerID     uuid.UUID           `gorm:"column:officer_id;type:uuid;not null;index"`
	Officer       *Officer            `gorm:"foreignKey:OfficerID"`
	VehicleNumber string              `gorm:"column:vehicle_number;not null"`
	VehicleType   enums.VehicleType   `gorm:"column:vehicle_type;not null"`
	Kind          enums.ViolationKind `gorm:"column:kind;not null"`
	FineAmount    decimal.Decimal     `gorm:"column:fine_amount;type:numeric(10,2);not null"`
	ImageRef      *string             `gorm:"column:image_ref"`
	VideoRef      *string             `gorm:"column:video_ref"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
