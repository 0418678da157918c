package media

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubMediaRepo struct {
	created   *models.Media
	deleteID  uuid.UUID
	createErr error
}

func (s *stubMediaRepo) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = media
	return media, nil
}

func (s *stubMediaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleteID = id
	return nil
}

func newDiskService(t *testing.T) (Service, *stubMediaRepo, *DiskStore) {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	repo := &stubMediaRepo{}
	svc, err := NewService(repo, store, 1<<20)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, store
}

func TestIngestImageSuccess(t *testing.T) {
	t.Parallel()

	svc, repo, store := newDiskService(t)
	ctx := context.Background()
	officerID := uuid.New()

	row, err := svc.Ingest(ctx, officerID, IngestInput{
		FileName: "scene.jpg",
		MimeType: "image/jpeg",
		Body:     strings.NewReader("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if row.Kind != enums.MediaKindImage {
		t.Fatalf("expected image kind, got %s", row.Kind)
	}
	if !strings.HasPrefix(row.StorageRef, "images/") {
		t.Fatalf("expected ref under images/, got %s", row.StorageRef)
	}
	if row.SizeBytes != int64(len("jpeg-bytes")) {
		t.Fatalf("unexpected size %d", row.SizeBytes)
	}
	if repo.created == nil || repo.created.StorageRef != row.StorageRef {
		t.Fatalf("media row not persisted")
	}

	rc, err := store.Open(ctx, row.StorageRef)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
}

func TestIngestVideoLandsUnderVideos(t *testing.T) {
	t.Parallel()

	svc, _, _ := newDiskService(t)

	row, err := svc.Ingest(context.Background(), uuid.New(), IngestInput{
		FileName: "clip.mp4",
		MimeType: "video/mp4",
		Body:     strings.NewReader("video-bytes"),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if row.Kind != enums.MediaKindVideo {
		t.Fatalf("expected video kind, got %s", row.Kind)
	}
	if !strings.HasPrefix(row.StorageRef, "videos/") {
		t.Fatalf("expected ref under videos/, got %s", row.StorageRef)
	}
}

func TestIngestRejectsUnsupportedMime(t *testing.T) {
	t.Parallel()

	svc, _, _ := newDiskService(t)

	_, err := svc.Ingest(context.Background(), uuid.New(), IngestInput{
		FileName: "report.pdf",
		MimeType: "application/pdf",
		Body:     strings.NewReader("pdf-bytes"),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "invalid media kind") {
		t.Fatalf("expected invalid media kind, got %v", err)
	}
}

func TestIngestRejectsKindMismatch(t *testing.T) {
	t.Parallel()

	svc, _, _ := newDiskService(t)

	_, err := svc.Ingest(context.Background(), uuid.New(), IngestInput{
		Expected: enums.MediaKindImage,
		FileName: "clip.mp4",
		MimeType: "video/mp4",
		Body:     strings.NewReader("video-bytes"),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestEnforcesSizeCap(t *testing.T) {
	t.Parallel()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	repo := &stubMediaRepo{}
	svc, err := NewService(repo, store, 8)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Ingest(context.Background(), uuid.New(), IngestInput{
		FileName: "big.jpg",
		MimeType: "image/jpeg",
		Body:     strings.NewReader("way-more-than-eight-bytes"),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("oversize upload must not persist a row")
	}
}

func TestIngestCleansUpWhenRepoFails(t *testing.T) {
	t.Parallel()

	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	repo := &stubMediaRepo{createErr: fmt.Errorf("insert failed")}
	svc, err := NewService(repo, store, 1<<20)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Ingest(context.Background(), uuid.New(), IngestInput{
		FileName: "scene.jpg",
		MimeType: "image/jpeg",
		Body:     strings.NewReader("jpeg-bytes"),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
