package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/arjunmehta/roadwatch-backend/api/responses"
	"github.com/arjunmehta/roadwatch-backend/internal/detection"
	"github.com/arjunmehta/roadwatch-backend/internal/media"
	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
)

type detectionRunner interface {
	Run(ctx context.Context, officerID uuid.UUID, upload media.IngestInput) (*detection.Outcome, error)
}

type detectMediaDTO struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	StorageRef string    `json:"storage_ref"`
	SizeBytes  int64     `json:"size_bytes"`
}

type detectResultDTO struct {
	Violation     bool   `json:"violation"`
	VehicleType   string `json:"vehicle_type"`
	VehicleNumber string `json:"vehicle_number"`
}

type detectResponse struct {
	Media      detectMediaDTO            `json:"media"`
	Detection  detectResultDTO           `json:"detection"`
	Violations []violations.ViolationDTO `json:"violations"`
	Errors     []string                  `json:"errors,omitempty"`
}

func uploadFieldName(kind enums.MediaKind) string {
	if kind == enums.MediaKindVideo {
		return "video"
	}
	return "image"
}

// DetectUpload ingests one evidence file and runs the detection pipeline on it.
func DetectUpload(pipe detectionRunner, kind enums.MediaKind, logg *logger.Logger) http.HandlerFunc {
	field := uploadFieldName(kind)

	return func(w http.ResponseWriter, r *http.Request) {
		if pipe == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "detection pipeline unavailable"))
			return
		}

		officerID, err := officerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, header, err := r.FormFile(field)
		if err != nil {
			verr := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing upload").
				WithDetails(map[string]any{"field": field})
			responses.WriteError(r.Context(), logg, w, verr)
			return
		}
		defer file.Close()

		outcome, err := pipe.Run(r.Context(), officerID, media.IngestInput{
			Expected:  kind,
			FileName:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Body:      file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toDetectResponse(outcome))
	}
}

func toDetectResponse(outcome *detection.Outcome) detectResponse {
	resp := detectResponse{
		Violations: make([]violations.ViolationDTO, 0, len(outcome.Created)),
	}

	if outcome.Media != nil {
		resp.Media = detectMediaDTO{
			ID:         outcome.Media.ID,
			Kind:       string(outcome.Media.Kind),
			StorageRef: outcome.Media.StorageRef,
			SizeBytes:  outcome.Media.SizeBytes,
		}
	}

	if outcome.Detection != nil {
		resp.Detection = detectResultDTO{
			Violation:     outcome.Detection.Violation,
			VehicleType:   string(outcome.Detection.VehicleType),
			VehicleNumber: outcome.Detection.VehicleNumber,
		}
	}

	for _, created := range outcome.Created {
		resp.Violations = append(resp.Violations, violations.FromModel(created))
	}

	for _, err := range outcome.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}

	return resp
}
