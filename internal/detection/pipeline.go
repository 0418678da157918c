package detection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjunmehta/roadwatch-backend/internal/media"
	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
	"github.com/arjunmehta/roadwatch-backend/pkg/metrics"
)

type ingester interface {
	Ingest(ctx context.Context, officerID uuid.UUID, input media.IngestInput) (*models.Media, error)
}

type detector interface {
	Detect(ctx context.Context, asset *models.Media) (*Result, error)
}

type recorder interface {
	CreateMany(ctx context.Context, drafts []violations.Draft) violations.BatchResult
}

// Pipeline runs one upload end to end: ingest, detect, interpret, persist.
type Pipeline struct {
	media   ingester
	client  detector
	interp  *Interpreter
	store   recorder
	metrics *metrics.PipelineMetrics
	logg    *logger.Logger
}

// NewPipeline wires the detection pipeline.
func NewPipeline(mediaSvc ingester, client detector, interp *Interpreter, store recorder, m *metrics.PipelineMetrics, logg *logger.Logger) (*Pipeline, error) {
	if mediaSvc == nil {
		return nil, fmt.Errorf("media service required")
	}
	if client == nil {
		return nil, fmt.Errorf("detection client required")
	}
	if interp == nil {
		return nil, fmt.Errorf("interpreter required")
	}
	if store == nil {
		return nil, fmt.Errorf("violations service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Pipeline{
		media:   mediaSvc,
		client:  client,
		interp:  interp,
		store:   store,
		metrics: m,
		logg:    logg,
	}, nil
}

// Outcome reports everything one pipeline run produced. Persistence failures
// are per-draft and land in Errors without discarding siblings.
type Outcome struct {
	Media     *models.Media
	Detection *Result
	Created   []*models.Violation
	Errors    []error
}

// Run short-circuits on ingest and detect failures; media already written to
// disk stays there so the upload can be retried against the stored asset.
func (p *Pipeline) Run(ctx context.Context, officerID uuid.UUID, upload media.IngestInput) (*Outcome, error) {
	asset, err := p.media.Ingest(ctx, officerID, upload)
	if err != nil {
		p.metrics.IncFailure(string(upload.Expected), "ingest")
		return nil, err
	}
	kind := string(asset.Kind)

	started := time.Now()
	result, err := p.client.Detect(ctx, asset)
	p.metrics.ObserveDetectDuration(kind, time.Since(started))
	if err != nil {
		p.metrics.IncFailure(kind, failureReason(err))
		return nil, err
	}

	drafts := p.interp.Interpret(ctx, result, officerID, asset)

	outcome := &Outcome{Media: asset, Detection: result}
	if len(drafts) > 0 {
		batch := p.store.CreateMany(ctx, drafts)
		outcome.Created = batch.Created
		for _, failed := range batch.Failed {
			outcome.Errors = append(outcome.Errors, failed.Err)
		}
	}

	p.metrics.IncSuccess(kind)
	p.metrics.AddViolations(kind, len(outcome.Created))
	return outcome, nil
}

func failureReason(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeDependencyTimeout):
		return "timeout"
	case pkgerrors.HasCode(err, pkgerrors.CodeUpstreamMalformed):
		return "malformed"
	case pkgerrors.HasCode(err, pkgerrors.CodeDependency):
		return "unavailable"
	default:
		return "internal"
	}
}
