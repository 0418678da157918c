package violations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	"github.com/arjunmehta/roadwatch-backend/pkg/pagination"
)

// Repository exposes violation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a violations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts one violation row.
func (r *Repository) Create(ctx context.Context, violation *models.Violation) (*models.Violation, error) {
	if err := r.db.WithContext(ctx).Create(violation).Error; err != nil {
		return nil, err
	}
	return violation, nil
}

// FindByID loads a violation by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Violation, error) {
	var violation models.Violation
	if err := r.db.WithContext(ctx).First(&violation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &violation, nil
}

// ListByOfficer returns one page of the officer's violations, newest first.
func (r *Repository) ListByOfficer(ctx context.Context, officerID uuid.UUID, params pagination.Params) ([]models.Violation, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Violation{}).
		Where("officer_id = ?", officerID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Violation
	if err := qb.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

type adminViolationRecord struct {
	ID             uuid.UUID
	OfficerID      uuid.UUID
	VehicleNumber  string
	VehicleType    enums.VehicleType
	Kind           enums.ViolationKind
	FineAmount     decimal.Decimal
	ImageRef       *string
	VideoRef       *string
	CreatedAt      time.Time
	OfficerName    string
	OfficerEmail   string
	OfficerStation string
}

func (rec adminViolationRecord) toDTO() AdminViolationDTO {
	return AdminViolationDTO{
		ViolationDTO: ViolationDTO{
			ID:            rec.ID,
			OfficerID:     rec.OfficerID,
			VehicleNumber: rec.VehicleNumber,
			VehicleType:   string(rec.VehicleType),
			Kind:          string(rec.Kind),
			FineAmount:    rec.FineAmount,
			ImageRef:      rec.ImageRef,
			VideoRef:      rec.VideoRef,
			CreatedAt:     rec.CreatedAt,
		},
		Officer: OfficerSummary{
			Name:    rec.OfficerName,
			Email:   rec.OfficerEmail,
			Station: rec.OfficerStation,
		},
	}
}

// ListAll returns one page of every officer's violations, newest first, with
// the reporting officer joined in.
func (r *Repository) ListAll(ctx context.Context, params pagination.Params) ([]AdminViolationDTO, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Table("violations v").
		Select("v.id, v.officer_id, v.vehicle_number, v.vehicle_type, v.kind, v.fine_amount, v.image_ref, v.video_ref, v.created_at, " +
			"o.name AS officer_name, o.email AS officer_email, o.station AS officer_station").
		Joins("JOIN officers o ON o.id = v.officer_id")
	if cursor != nil {
		qb = qb.Where("(v.created_at < ?) OR (v.created_at = ? AND v.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []adminViolationRecord
	if err := qb.Order("v.created_at DESC").Order("v.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]AdminViolationDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, rec.toDTO())
	}
	return dtos, nextCursor, nil
}
