package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
)

// Officer is the authenticated actor who captures media and owns violations.
type Officer struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.OfficerRole `gorm:"column:role;not null;default:police"`
	Station      string            `gorm:"column:station"`
	Phone        *string           `gorm:"column:phone"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
