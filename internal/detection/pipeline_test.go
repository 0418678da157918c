package detection

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/internal/media"
	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
)

type stubIngester struct {
	asset *models.Media
	err   error
	calls int
}

func (s *stubIngester) Ingest(ctx context.Context, officerID uuid.UUID, input media.IngestInput) (*models.Media, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.asset, nil
}

type stubDetector struct {
	result *Result
	err    error
	calls  int
}

func (s *stubDetector) Detect(ctx context.Context, asset *models.Media) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubRecorder struct {
	batch  violations.BatchResult
	drafts []violations.Draft
	calls  int
}

func (s *stubRecorder) CreateMany(ctx context.Context, drafts []violations.Draft) violations.BatchResult {
	s.calls++
	s.drafts = drafts
	return s.batch
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestPipeline(t *testing.T, ing *stubIngester, det *stubDetector, rec *stubRecorder) *Pipeline {
	t.Helper()
	logg := quietLogger()
	interp, err := NewInterpreter(logg)
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	pipe, err := NewPipeline(ing, det, interp, rec, nil, logg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return pipe
}

func TestPipelineRunPersistsViolation(t *testing.T) {
	t.Parallel()

	asset := &models.Media{ID: uuid.New(), Kind: enums.MediaKindImage, StorageRef: "images/1-a.jpg"}
	created := &models.Violation{ID: uuid.New(), Kind: enums.ViolationKindHelmet, FineAmount: decimal.NewFromInt(500)}

	ing := &stubIngester{asset: asset}
	det := &stubDetector{result: &Result{
		Violation:     true,
		VehicleType:   enums.VehicleTypeBike,
		VehicleNumber: "KA01AB1234",
		Helmet:        boolPtr(false),
	}}
	rec := &stubRecorder{batch: violations.BatchResult{Created: []*models.Violation{created}}}

	pipe := newTestPipeline(t, ing, det, rec)
	outcome, err := pipe.Run(context.Background(), uuid.New(), media.IngestInput{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.Media != asset {
		t.Fatalf("outcome must carry ingested media")
	}
	if len(outcome.Created) != 1 || outcome.Created[0] != created {
		t.Fatalf("expected one created violation")
	}
	if len(outcome.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", outcome.Errors)
	}
	if rec.calls != 1 || len(rec.drafts) != 1 {
		t.Fatalf("recorder should receive exactly one draft")
	}
}

func TestPipelineNoViolationSkipsPersistence(t *testing.T) {
	t.Parallel()

	ing := &stubIngester{asset: &models.Media{Kind: enums.MediaKindImage}}
	det := &stubDetector{result: &Result{Violation: false, VehicleType: enums.VehicleTypeUnknown}}
	rec := &stubRecorder{}

	pipe := newTestPipeline(t, ing, det, rec)
	outcome, err := pipe.Run(context.Background(), uuid.New(), media.IngestInput{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rec.calls != 0 {
		t.Fatalf("no drafts means no persistence call")
	}
	if len(outcome.Created) != 0 {
		t.Fatalf("expected zero created rows")
	}
}

func TestPipelineDetectTimeoutAborts(t *testing.T) {
	t.Parallel()

	ing := &stubIngester{asset: &models.Media{Kind: enums.MediaKindVideo}}
	det := &stubDetector{err: pkgerrors.New(pkgerrors.CodeDependencyTimeout, "detection service timed out")}
	rec := &stubRecorder{}

	pipe := newTestPipeline(t, ing, det, rec)
	_, err := pipe.Run(context.Background(), uuid.New(), media.IngestInput{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependencyTimeout) {
		t.Fatalf("timeout must surface verbatim, got %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("persistence must not run after detect failure")
	}
	if ing.calls != 1 {
		t.Fatalf("ingest runs before detect")
	}
}

func TestPipelineIngestFailureAborts(t *testing.T) {
	t.Parallel()

	ing := &stubIngester{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")}
	det := &stubDetector{}
	rec := &stubRecorder{}

	pipe := newTestPipeline(t, ing, det, rec)
	_, err := pipe.Run(context.Background(), uuid.New(), media.IngestInput{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if det.calls != 0 {
		t.Fatalf("detect must not run after ingest failure")
	}
}

func TestPipelineReportsPartialPersistenceFailure(t *testing.T) {
	t.Parallel()

	failure := pkgerrors.New(pkgerrors.CodeConflict, "unknown officer")
	ing := &stubIngester{asset: &models.Media{Kind: enums.MediaKindImage}}
	det := &stubDetector{result: &Result{
		Violation:   true,
		VehicleType: enums.VehicleTypeCar,
		Seatbelt:    boolPtr(false),
	}}
	rec := &stubRecorder{batch: violations.BatchResult{
		Failed: []violations.FailedDraft{{Err: failure}},
	}}

	pipe := newTestPipeline(t, ing, det, rec)
	outcome, err := pipe.Run(context.Background(), uuid.New(), media.IngestInput{})
	if err != nil {
		t.Fatalf("persistence failures are reported, not returned: %v", err)
	}
	if len(outcome.Errors) != 1 || outcome.Errors[0] != failure {
		t.Fatalf("expected the persistence failure in outcome, got %v", outcome.Errors)
	}
}
