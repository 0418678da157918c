package officers

import (
	"time"

	"github.com/google/uuid"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
)

// OfficerDTO is the transport shape that omits sensitive credentials.
type OfficerDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Station     string     `json:"station"`
	Phone       *string    `json:"phone,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateOfficerDTO holds the data required by the repo to persist a new officer.
type CreateOfficerDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.OfficerRole
	Station      string
	Phone        *string
	IsActive     *bool
}

func FromModel(o *models.Officer) *OfficerDTO {
	if o == nil {
		return nil
	}

	return &OfficerDTO{
		ID:          o.ID,
		Name:        o.Name,
		Email:       o.Email,
		Role:        string(o.Role),
		Station:     o.Station,
		Phone:       o.Phone,
		IsActive:    o.IsActive,
		LastLoginAt: o.LastLoginAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (c CreateOfficerDTO) ToModel() *models.Officer {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	role := c.Role
	if role == "" {
		role = enums.OfficerRolePolice
	}

	return &models.Officer{
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		Station:      c.Station,
		Phone:        c.Phone,
		IsActive:     isActive,
	}
}
