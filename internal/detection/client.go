package detection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/arjunmehta/roadwatch-backend/pkg/config"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Result is the normalized detection outcome. Absent wire fields collapse to
// safe defaults rather than errors; "no violation" is a valid result.
type Result struct {
	Violation     bool
	VehicleType   enums.VehicleType
	VehicleNumber string
	Helmet        *bool
	Seatbelt      *bool
	Fine          *decimal.Decimal
}

// DefaultVehicleNumber is reported when the remote service cannot read a plate.
const DefaultVehicleNumber = "Unknown"

// wireResult mirrors the remote service's JSON response.
type wireResult struct {
	Violation     *bool    `json:"violation"`
	Vehicle       string   `json:"vehicle"`
	VehicleNumber string   `json:"vehicleNumber"`
	Helmet        *bool    `json:"helmet"`
	Seatbelt      *bool    `json:"seatbelt"`
	Fine          *float64 `json:"fine"`
}

type blobOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Client calls the external detection service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	blobs   blobOpener
}

// NewClient constructs a detection client for the configured ML endpoint.
func NewClient(cfg config.MLConfig, blobs blobOpener) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("ml base url is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob opener is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: base,
		timeout: timeout,
		http:    &http.Client{},
		blobs:   blobs,
	}, nil
}

var fieldByKind = map[enums.MediaKind]string{
	enums.MediaKindImage: "image",
	enums.MediaKindVideo: "video",
}

// Detect streams the stored media to the detection service and decodes the
// verdict. The call is bounded by the configured timeout; no retries.
func (c *Client) Detect(ctx context.Context, asset *models.Media) (*Result, error) {
	if asset == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media asset is required")
	}
	field, ok := fieldByKind[asset.Kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	blob, err := c.blobs.Open(ctx, asset.StorageRef)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open stored media")
	}
	defer blob.Close()

	// Stream the multipart body instead of buffering the whole file.
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)
	go func() {
		part, err := writer.CreateFormFile(field, asset.FileName)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, blob); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(writer.Close())
	}()

	url := fmt.Sprintf("%s/detect/%s", c.baseURL, asset.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pipeReader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build detection request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependencyTimeout, err, "detection service timed out")
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detection service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("detection service returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamMalformed,
			fmt.Sprintf("detection service returned %d", resp.StatusCode))
	}

	var wire wireResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&wire); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamMalformed, err, "decode detection response")
	}
	if wire.Violation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamMalformed, "detection response missing violation field")
	}

	return normalize(wire), nil
}

func normalize(wire wireResult) *Result {
	number := strings.TrimSpace(wire.VehicleNumber)
	if number == "" {
		number = DefaultVehicleNumber
	}

	var fine *decimal.Decimal
	if wire.Fine != nil {
		d := decimal.NewFromFloat(*wire.Fine)
		fine = &d
	}

	return &Result{
		Violation:     *wire.Violation,
		VehicleType:   enums.ParseVehicleType(wire.Vehicle),
		VehicleNumber: number,
		Helmet:        wire.Helmet,
		Seatbelt:      wire.Seatbelt,
		Fine:          fine,
	}
}
