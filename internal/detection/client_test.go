package detection

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arjunmehta/roadwatch-backend/pkg/config"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubBlobs struct {
	payload string
}

func (s stubBlobs) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.payload)), nil
}

func imageAsset() *models.Media {
	return &models.Media{
		ID:         uuid.New(),
		Kind:       enums.MediaKindImage,
		StorageRef: "images/1-abc.jpg",
		FileName:   "scene.jpg",
		MimeType:   "image/jpeg",
	}
}

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient(config.MLConfig{BaseURL: url, Timeout: timeout}, stubBlobs{payload: "jpeg-bytes"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestDetectImageSuccess(t *testing.T) {
	t.Parallel()

	var gotPath, gotField string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("image"); err == nil {
			gotField = "image"
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"violation":true,"vehicle":"bike","vehicleNumber":"KA01AB1234","helmet":false,"fine":500}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	result, err := client.Detect(context.Background(), imageAsset())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if gotPath != "/detect/image" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotField != "image" {
		t.Fatalf("multipart field image not found")
	}
	if !result.Violation {
		t.Fatalf("expected violation")
	}
	if result.VehicleType != enums.VehicleTypeBike {
		t.Fatalf("expected bike, got %s", result.VehicleType)
	}
	if result.VehicleNumber != "KA01AB1234" {
		t.Fatalf("unexpected vehicle number %s", result.VehicleNumber)
	}
	if result.Helmet == nil || *result.Helmet {
		t.Fatalf("expected helmet=false")
	}
	if result.Fine == nil || !result.Fine.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected fine 500, got %v", result.Fine)
	}
}

func TestDetectDefaultsAbsentFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"violation":false,"vehicle":"lorry"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	result, err := client.Detect(context.Background(), imageAsset())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if result.Violation {
		t.Fatalf("no violation expected")
	}
	if result.VehicleType != enums.VehicleTypeUnknown {
		t.Fatalf("unrecognized label should collapse to unknown, got %s", result.VehicleType)
	}
	if result.VehicleNumber != DefaultVehicleNumber {
		t.Fatalf("expected default vehicle number, got %s", result.VehicleNumber)
	}
	if result.Helmet != nil || result.Seatbelt != nil || result.Fine != nil {
		t.Fatalf("absent optional fields must stay nil")
	}
}

func TestDetectTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 30*time.Millisecond)
	_, err := client.Detect(context.Background(), imageAsset())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependencyTimeout) {
		t.Fatalf("expected timeout code, got %v", err)
	}
}

func TestDetectServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	_, err := client.Detect(context.Background(), imageAsset())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestDetectUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL, time.Second)
	_, err := client.Detect(context.Background(), imageAsset())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestDetectMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"violation": "not-a-bool"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	_, err := client.Detect(context.Background(), imageAsset())
	if !pkgerrors.HasCode(err, pkgerrors.CodeUpstreamMalformed) {
		t.Fatalf("expected malformed code, got %v", err)
	}
}

func TestDetectMissingViolationField(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"vehicle":"car"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)
	_, err := client.Detect(context.Background(), imageAsset())
	if !pkgerrors.HasCode(err, pkgerrors.CodeUpstreamMalformed) {
		t.Fatalf("expected malformed code, got %v", err)
	}
}

func TestDetectRejectsOtherKind(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:1", time.Second)
	asset := imageAsset()
	asset.Kind = enums.MediaKindOther
	_, err := client.Detect(context.Background(), asset)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
}
