package detection

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/internal/violations"
	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
)

// fineSchedule is owned here, not by the remote service. The remote fine is
// advisory only.
var fineSchedule = map[enums.ViolationKind]decimal.Decimal{
	enums.ViolationKindHelmet:   decimal.NewFromInt(500),
	enums.ViolationKindSeatbelt: decimal.NewFromInt(500),
}

// Interpreter turns a detection result into violation drafts. The mapping is
// deterministic; a result that shows no offence yields no drafts.
type Interpreter struct {
	logg *logger.Logger
}

// NewInterpreter constructs an interpreter.
func NewInterpreter(logg *logger.Logger) (*Interpreter, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Interpreter{logg: logg}, nil
}

// Interpret maps a result onto drafts for the reporting officer. A bike with
// helmet confirmed absent is a Helmet offence; a car with seatbelt confirmed
// absent is a Seatbelt offence. Unknown vehicles and absent presence flags
// produce nothing.
func (i *Interpreter) Interpret(ctx context.Context, res *Result, officerID uuid.UUID, media *models.Media) []violations.Draft {
	if res == nil {
		return nil
	}

	var kind enums.ViolationKind
	switch {
	case res.VehicleType == enums.VehicleTypeBike && res.Helmet != nil && !*res.Helmet:
		kind = enums.ViolationKindHelmet
	case res.VehicleType == enums.VehicleTypeCar && res.Seatbelt != nil && !*res.Seatbelt:
		kind = enums.ViolationKindSeatbelt
	default:
		return nil
	}

	fine := fineSchedule[kind]
	if res.Fine != nil && !res.Fine.Equal(fine) {
		i.logg.Warn(i.logg.WithFields(ctx, map[string]any{
			"kind":           kind.String(),
			"schedule_fine":  fine.String(),
			"reported_fine":  res.Fine.String(),
			"vehicle_number": res.VehicleNumber,
		}), "detection service reported a fine that differs from the schedule")
	}

	number := res.VehicleNumber
	if number == "" {
		number = DefaultVehicleNumber
	}

	draft := violations.Draft{
		OfficerID:     officerID,
		VehicleNumber: number,
		VehicleType:   res.VehicleType,
		Kind:          kind,
		FineAmount:    fine,
	}
	if media != nil {
		switch media.Kind {
		case enums.MediaKindImage:
			draft.ImageRef = &media.StorageRef
		case enums.MediaKindVideo:
			draft.VideoRef = &media.StorageRef
		}
	}
	return []violations.Draft{draft}
}
