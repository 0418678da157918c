package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/google/uuid"
)

type mediaRepository interface {
	Create(ctx context.Context, media *models.Media) (*models.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service ingests uploaded files: the bytes go to the blob store, the
// metadata row to the database.
type Service interface {
	Ingest(ctx context.Context, officerID uuid.UUID, input IngestInput) (*models.Media, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

type service struct {
	repo     mediaRepository
	blobs    BlobStore
	maxBytes int64
}

// NewService constructs a media ingest service.
func NewService(repo mediaRepository, blobs BlobStore, maxBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{repo: repo, blobs: blobs, maxBytes: maxBytes}, nil
}

// IngestInput carries one uploaded file.
type IngestInput struct {
	// Expected restricts which kind the upload may resolve to. Leave empty
	// to accept images and videos alike.
	Expected  enums.MediaKind
	FileName  string
	MimeType  string
	SizeBytes int64
	Body      io.Reader
}

func (s *service) Ingest(ctx context.Context, officerID uuid.UUID, input IngestInput) (*models.Media, error) {
	if officerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "officer identity missing")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload body is required")
	}

	fileName := path.Base(strings.TrimSpace(input.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}

	mimeType, err := sniffMimeType(input.MimeType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "mime type invalid")
	}

	kind := enums.MediaKindForMime(mimeType)
	if kind == enums.MediaKindOther {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind").
			WithDetails(map[string]any{"mime_type": mimeType})
	}
	if input.Expected != "" && kind != input.Expected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("expected %s upload, got %s", input.Expected, kind))
	}

	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("upload exceeds %d bytes", s.maxBytes))
	}

	body := io.LimitReader(input.Body, s.maxBytes+1)
	ref, written, err := s.blobs.Save(ctx, kind, fileName, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store upload")
	}
	if written > s.maxBytes {
		_ = s.blobs.Remove(ctx, ref)
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("upload exceeds %d bytes", s.maxBytes))
	}

	row := &models.Media{
		ID:         uuid.New(),
		OfficerID:  &officerID,
		Kind:       kind,
		StorageRef: ref,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  written,
	}
	if _, err := s.repo.Create(ctx, row); err != nil {
		_ = s.blobs.Remove(ctx, ref)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media row")
	}
	return row, nil
}

// Open returns the stored bytes for the given storage ref.
func (s *service) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.blobs.Open(ctx, ref)
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}
