package officers

import (
	"context"
	"time"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes officer-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an officers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new officer and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateOfficerDTO) (*models.Officer, error) {
	officer := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(officer).Error; err != nil {
		return nil, err
	}
	return officer, nil
}

// FindByEmail retrieves the officer matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Officer, error) {
	var officer models.Officer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&officer).Error; err != nil {
		return nil, err
	}
	return &officer, nil
}

// FindByID loads an officer by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Officer, error) {
	var officer models.Officer
	if err := r.db.WithContext(ctx).First(&officer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &officer, nil
}

// UpdateLastLogin refreshes the officer's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Officer{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
