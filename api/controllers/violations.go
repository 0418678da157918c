package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/api/middleware"
	"github.com/arjunmehta/roadwatch-backend/api/responses"
	"github.com/arjunmehta/roadwatch-backend/api/validators"
	"github.com/arjunmehta/roadwatch-backend/internal/media"
	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
)

type violationReportRequest struct {
	VehicleNumber string  `json:"vehicle_number" validate:"required"`
	VehicleType   string  `json:"vehicle_type" validate:"required"`
	Kind          string  `json:"kind" validate:"required"`
	FineAmount    string  `json:"fine_amount" validate:"required"`
	ImageRef      *string `json:"image_ref,omitempty"`
	VideoRef      *string `json:"video_ref,omitempty"`
}

func (r violationReportRequest) toDraft(officerID uuid.UUID) (violations.Draft, error) {
	vehicleType := enums.ParseVehicleType(strings.TrimSpace(r.VehicleType))
	kind, err := enums.ParseViolationKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return violations.Draft{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind")
	}
	fine, err := decimal.NewFromString(strings.TrimSpace(r.FineAmount))
	if err != nil {
		return violations.Draft{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid fine_amount")
	}
	return violations.Draft{
		OfficerID:     officerID,
		VehicleNumber: strings.TrimSpace(r.VehicleNumber),
		VehicleType:   vehicleType,
		Kind:          kind,
		FineAmount:    fine,
		ImageRef:      r.ImageRef,
		VideoRef:      r.VideoRef,
	}, nil
}

func officerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.OfficerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "officer context missing")
	}
	oid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid officer id")
	}
	return oid, nil
}

type mediaIngester interface {
	Ingest(ctx context.Context, officerID uuid.UUID, input media.IngestInput) (*models.Media, error)
}

// ViolationCreate records a manually reported violation. The request is
// either JSON or multipart form data; a multipart "file" part is ingested
// and attached to the draft as evidence.
func ViolationCreate(svc violations.Service, ingest mediaIngester, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "violations service unavailable"))
			return
		}

		officerID, err := officerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body violationReportRequest
		multipart := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
		if multipart {
			body = violationReportRequest{
				VehicleNumber: r.FormValue("vehicle_number"),
				VehicleType:   r.FormValue("vehicle_type"),
				Kind:          r.FormValue("kind"),
				FineAmount:    r.FormValue("fine_amount"),
			}
		} else if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := body.toDraft(officerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if multipart && ingest != nil {
			if err := attachEvidence(r, ingest, officerID, &draft); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		created, err := svc.Create(r.Context(), draft)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, violations.FromModel(created))
	}
}

func attachEvidence(r *http.Request, ingest mediaIngester, officerID uuid.UUID, draft *violations.Draft) error {
	file, header, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	defer file.Close()

	asset, err := ingest.Ingest(r.Context(), officerID, media.IngestInput{
		FileName:  header.Filename,
		MimeType:  header.Header.Get("Content-Type"),
		SizeBytes: header.Size,
		Body:      file,
	})
	if err != nil {
		return err
	}

	ref := asset.StorageRef
	if asset.Kind == enums.MediaKindVideo {
		draft.VideoRef = &ref
	} else {
		draft.ImageRef = &ref
	}
	return nil
}

// ViolationListMine pages through the authenticated officer's reports.
func ViolationListMine(svc violations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "violations service unavailable"))
			return
		}

		officerID, err := officerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByOfficer(r.Context(), officerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminViolationList pages through every officer's reports.
func AdminViolationList(svc violations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "violations service unavailable"))
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
