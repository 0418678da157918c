package violations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/arjunmehta/roadwatch-backend/pkg/db"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
	"github.com/arjunmehta/roadwatch-backend/pkg/pagination"
)

type violationRepository interface {
	Create(ctx context.Context, violation *models.Violation) (*models.Violation, error)
	ListByOfficer(ctx context.Context, officerID uuid.UUID, params pagination.Params) ([]models.Violation, string, error)
	ListAll(ctx context.Context, params pagination.Params) ([]AdminViolationDTO, string, error)
}

// Service exposes violation recording and listing semantics.
type Service interface {
	Create(ctx context.Context, draft Draft) (*models.Violation, error)
	CreateMany(ctx context.Context, drafts []Draft) BatchResult
	ListByOfficer(ctx context.Context, officerID uuid.UUID, params pagination.Params) (*ListResult, error)
	ListAll(ctx context.Context, params pagination.Params) (*AdminListResult, error)
}

type service struct {
	repo violationRepository
	logg *logger.Logger
}

// NewService constructs a violations service.
func NewService(repo violationRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("violations repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// FailedDraft pairs a rejected draft with the error that rejected it.
type FailedDraft struct {
	Draft Draft
	Err   error
}

// BatchResult reports per-draft outcomes of CreateMany.
type BatchResult struct {
	Created []*models.Violation
	Failed  []FailedDraft
}

// AggregateErr folds all per-draft failures into one error for logging.
func (b BatchResult) AggregateErr() error {
	var err error
	for _, failed := range b.Failed {
		err = multierr.Append(err, failed.Err)
	}
	return err
}

func (s *service) Create(ctx context.Context, draft Draft) (*models.Violation, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, draft.toModel())
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "unknown officer").
				WithDetails(map[string]any{"officer_id": draft.OfficerID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist violation")
	}
	return created, nil
}

// CreateMany persists each draft independently: one bad draft never rolls
// back its siblings.
func (s *service) CreateMany(ctx context.Context, drafts []Draft) BatchResult {
	var result BatchResult
	for _, draft := range drafts {
		created, err := s.Create(ctx, draft)
		if err != nil {
			result.Failed = append(result.Failed, FailedDraft{Draft: draft, Err: err})
			continue
		}
		result.Created = append(result.Created, created)
	}
	if aggErr := result.AggregateErr(); aggErr != nil {
		s.logg.Error(ctx, "batch violation create had failures", aggErr)
	}
	return result
}

func (s *service) ListByOfficer(ctx context.Context, officerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if officerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "officer identity missing")
	}

	rows, next, err := s.repo.ListByOfficer(ctx, officerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list violations")
	}

	dtos := make([]ViolationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, FromModel(&rows[i]))
	}
	return &ListResult{Violations: dtos, NextCursor: next}, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*AdminListResult, error) {
	dtos, next, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list all violations")
	}
	if dtos == nil {
		dtos = []AdminViolationDTO{}
	}
	return &AdminListResult{Violations: dtos, NextCursor: next}, nil
}

// validateDraft gathers every missing or invalid field so the caller sees the
// full list at once.
func validateDraft(draft Draft) error {
	var fields []string
	if draft.OfficerID == uuid.Nil {
		fields = append(fields, "officer_id")
	}
	if draft.VehicleNumber == "" {
		fields = append(fields, "vehicle_number")
	}
	if draft.VehicleType == "" || !draft.VehicleType.IsValid() {
		fields = append(fields, "vehicle_type")
	}
	if draft.Kind == "" || !draft.Kind.IsValid() {
		fields = append(fields, "kind")
	}
	if draft.FineAmount.IsNegative() {
		fields = append(fields, "fine_amount")
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "violation draft invalid").
		WithDetails(map[string]any{"fields": fields})
}
