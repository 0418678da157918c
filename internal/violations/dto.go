package violations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
)

// Draft is a violation candidate before persistence. Drafts come from the
// detection interpreter or from a manual report.
type Draft struct {
	OfficerID     uuid.UUID
	VehicleNumber string
	VehicleType   enums.VehicleType
	Kind          enums.ViolationKind
	FineAmount    decimal.Decimal
	ImageRef      *string
	VideoRef      *string
}

// ViolationDTO is the transport shape for a recorded violation.
type ViolationDTO struct {
	ID            uuid.UUID       `json:"id"`
	OfficerID     uuid.UUID       `json:"officer_id"`
	VehicleNumber string          `json:"vehicle_number"`
	VehicleType   string          `json:"vehicle_type"`
	Kind          string          `json:"kind"`
	FineAmount    decimal.Decimal `json:"fine_amount"`
	ImageRef      *string         `json:"image_ref,omitempty"`
	VideoRef      *string         `json:"video_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OfficerSummary is the projection attached to admin listings.
type OfficerSummary struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Station string `json:"station"`
}

// AdminViolationDTO is a violation row plus its reporting officer.
type AdminViolationDTO struct {
	ViolationDTO
	Officer OfficerSummary `json:"officer"`
}

// ListResult is one page of an officer's violations.
type ListResult struct {
	Violations []ViolationDTO `json:"violations"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// AdminListResult is one page of the privileged all-officers listing.
type AdminListResult struct {
	Violations []AdminViolationDTO `json:"violations"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

func FromModel(v *models.Violation) ViolationDTO {
	return ViolationDTO{
		ID:            v.ID,
		OfficerID:     v.OfficerID,
		VehicleNumber: v.VehicleNumber,
		VehicleType:   string(v.VehicleType),
		Kind:          string(v.Kind),
		FineAmount:    v.FineAmount,
		ImageRef:      v.ImageRef,
		VideoRef:      v.VideoRef,
		CreatedAt:     v.CreatedAt,
	}
}

func (d Draft) toModel() *models.Violation {
	return &models.Violation{
		OfficerID:     d.OfficerID,
		VehicleNumber: d.VehicleNumber,
		VehicleType:   d.VehicleType,
		Kind:          d.Kind,
		FineAmount:    d.FineAmount,
		ImageRef:      d.ImageRef,
		VideoRef:      d.VideoRef,
	}
}
