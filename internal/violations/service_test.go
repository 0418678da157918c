package violations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
	"github.com/arjunmehta/roadwatch-backend/pkg/pagination"
)

type stubViolationRepo struct {
	createErrs map[string]error
	created    []*models.Violation
	listRows   []models.Violation
	listNext   string
	listErr    error
	adminRows  []AdminViolationDTO
}

func (s *stubViolationRepo) Create(ctx context.Context, violation *models.Violation) (*models.Violation, error) {
	if err, ok := s.createErrs[violation.VehicleNumber]; ok {
		return nil, err
	}
	violation.ID = uuid.New()
	s.created = append(s.created, violation)
	return violation, nil
}

func (s *stubViolationRepo) ListByOfficer(ctx context.Context, officerID uuid.UUID, params pagination.Params) ([]models.Violation, string, error) {
	return s.listRows, s.listNext, s.listErr
}

func (s *stubViolationRepo) ListAll(ctx context.Context, params pagination.Params) ([]AdminViolationDTO, string, error) {
	return s.adminRows, s.listNext, s.listErr
}

func newTestService(t *testing.T, repo *stubViolationRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(repo, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validDraft(officerID uuid.UUID) Draft {
	return Draft{
		OfficerID:     officerID,
		VehicleNumber: "KA01AB1234",
		VehicleType:   enums.VehicleTypeBike,
		Kind:          enums.ViolationKindHelmet,
		FineAmount:    decimal.NewFromInt(500),
	}
}

func TestCreateValid(t *testing.T) {
	t.Parallel()

	repo := &stubViolationRepo{}
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), validDraft(uuid.New()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected persisted row with ID")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one insert")
	}
}

func TestCreateListsAllInvalidFields(t *testing.T) {
	t.Parallel()

	repo := &stubViolationRepo{}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), Draft{FineAmount: decimal.NewFromInt(-1)})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	typed := pkgerrors.As(err)
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	fields, ok := details["fields"].([]string)
	if !ok {
		t.Fatalf("expected fields list, got %T", details["fields"])
	}
	want := []string{"officer_id", "vehicle_number", "vehicle_type", "kind", "fine_amount"}
	if len(fields) != len(want) {
		t.Fatalf("expected all %d invalid fields reported, got %v", len(want), fields)
	}
	for i, field := range want {
		if fields[i] != field {
			t.Fatalf("expected field %q at %d, got %v", field, i, fields)
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("invalid draft must not persist")
	}
}

func TestCreateUnknownOfficerIsConflict(t *testing.T) {
	t.Parallel()

	repo := &stubViolationRepo{createErrs: map[string]error{
		"KA01AB1234": errors.New("insert or update on table \"violations\" violates foreign key constraint \"fk_officers\""),
	}}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), validDraft(uuid.New()))
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateManyPartialSuccess(t *testing.T) {
	t.Parallel()

	repo := &stubViolationRepo{createErrs: map[string]error{
		"BAD-ROW": fmt.Errorf("insert failed"),
	}}
	svc := newTestService(t, repo)

	officerID := uuid.New()
	bad := validDraft(officerID)
	bad.VehicleNumber = "BAD-ROW"

	batch := svc.CreateMany(context.Background(), []Draft{
		validDraft(officerID),
		bad,
		validDraft(officerID),
	})

	if len(batch.Created) != 2 {
		t.Fatalf("expected 2 created, got %d", len(batch.Created))
	}
	if len(batch.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(batch.Failed))
	}
	if batch.Failed[0].Draft.VehicleNumber != "BAD-ROW" {
		t.Fatalf("failure must reference the offending draft")
	}
	if batch.AggregateErr() == nil {
		t.Fatalf("aggregate error expected when any draft fails")
	}
}

func TestCreateManyAllFailed(t *testing.T) {
	t.Parallel()

	repo := &stubViolationRepo{}
	svc := newTestService(t, repo)

	batch := svc.CreateMany(context.Background(), []Draft{{}, {}})
	if len(batch.Created) != 0 || len(batch.Failed) != 2 {
		t.Fatalf("expected both drafts rejected, got %+v", batch)
	}
}

func TestListByOfficerRequiresIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubViolationRepo{})
	_, err := svc.ListByOfficer(context.Background(), uuid.Nil, pagination.Params{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByOfficerMapsRows(t *testing.T) {
	t.Parallel()

	row := models.Violation{
		ID:            uuid.New(),
		OfficerID:     uuid.New(),
		VehicleNumber: "KA01AB1234",
		VehicleType:   enums.VehicleTypeCar,
		Kind:          enums.ViolationKindSeatbelt,
		FineAmount:    decimal.NewFromInt(500),
	}
	svc := newTestService(t, &stubViolationRepo{listRows: []models.Violation{row}, listNext: "cursor"})

	result, err := svc.ListByOfficer(context.Background(), row.OfficerID, pagination.Params{})
	if err != nil {
		t.Fatalf("ListByOfficer: %v", err)
	}
	if len(result.Violations) != 1 {
		t.Fatalf("expected one row")
	}
	if result.Violations[0].Kind != string(enums.ViolationKindSeatbelt) {
		t.Fatalf("unexpected kind %s", result.Violations[0].Kind)
	}
	if result.NextCursor != "cursor" {
		t.Fatalf("cursor not propagated")
	}
}
