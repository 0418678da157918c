package detection

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arjunmehta/roadwatch-backend/pkg/db/models"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	"github.com/arjunmehta/roadwatch-backend/pkg/logger"
)

func boolPtr(v bool) *bool { return &v }

func testInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: &buf})
	interp, err := NewInterpreter(logg)
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	return interp, &buf
}

func TestInterpretBikeWithoutHelmet(t *testing.T) {
	t.Parallel()

	interp, _ := testInterpreter(t)
	officerID := uuid.New()
	asset := &models.Media{Kind: enums.MediaKindImage, StorageRef: "images/1-a.jpg"}

	drafts := interp.Interpret(context.Background(), &Result{
		Violation:     true,
		VehicleType:   enums.VehicleTypeBike,
		VehicleNumber: "KA01AB1234",
		Helmet:        boolPtr(false),
	}, officerID, asset)

	if len(drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(drafts))
	}
	draft := drafts[0]
	if draft.Kind != enums.ViolationKindHelmet {
		t.Fatalf("expected helmet offence, got %s", draft.Kind)
	}
	if !draft.FineAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected fine 500, got %s", draft.FineAmount)
	}
	if draft.OfficerID != officerID {
		t.Fatalf("draft must carry the reporting officer")
	}
	if draft.ImageRef == nil || *draft.ImageRef != asset.StorageRef {
		t.Fatalf("image ref not attached")
	}
	if draft.VideoRef != nil {
		t.Fatalf("video ref must stay nil for image media")
	}
}

func TestInterpretCarWithoutSeatbelt(t *testing.T) {
	t.Parallel()

	interp, _ := testInterpreter(t)
	asset := &models.Media{Kind: enums.MediaKindVideo, StorageRef: "videos/1-a.mp4"}

	drafts := interp.Interpret(context.Background(), &Result{
		Violation:   true,
		VehicleType: enums.VehicleTypeCar,
		Seatbelt:    boolPtr(false),
	}, uuid.New(), asset)

	if len(drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(drafts))
	}
	if drafts[0].Kind != enums.ViolationKindSeatbelt {
		t.Fatalf("expected seatbelt offence, got %s", drafts[0].Kind)
	}
	if drafts[0].VideoRef == nil || *drafts[0].VideoRef != asset.StorageRef {
		t.Fatalf("video ref not attached")
	}
	if drafts[0].VehicleNumber != DefaultVehicleNumber {
		t.Fatalf("empty plate must default to %q", DefaultVehicleNumber)
	}
}

func TestInterpretNoOffence(t *testing.T) {
	t.Parallel()

	interp, _ := testInterpreter(t)
	cases := map[string]*Result{
		"nil result":           nil,
		"compliant bike":       {VehicleType: enums.VehicleTypeBike, Helmet: boolPtr(true)},
		"compliant car":        {VehicleType: enums.VehicleTypeCar, Seatbelt: boolPtr(true)},
		"unknown vehicle":      {VehicleType: enums.VehicleTypeUnknown, Helmet: boolPtr(false)},
		"bike without flag":    {VehicleType: enums.VehicleTypeBike},
		"car with helmet flag": {VehicleType: enums.VehicleTypeCar, Helmet: boolPtr(false)},
	}
	for name, res := range cases {
		if drafts := interp.Interpret(context.Background(), res, uuid.New(), nil); len(drafts) != 0 {
			t.Errorf("%s: expected no drafts, got %d", name, len(drafts))
		}
	}
}

func TestInterpretWarnsOnFineDivergence(t *testing.T) {
	t.Parallel()

	interp, buf := testInterpreter(t)
	reported := decimal.NewFromInt(750)

	drafts := interp.Interpret(context.Background(), &Result{
		Violation:   true,
		VehicleType: enums.VehicleTypeBike,
		Helmet:      boolPtr(false),
		Fine:        &reported,
	}, uuid.New(), nil)

	if len(drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(drafts))
	}
	if !drafts[0].FineAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("schedule fine must win, got %s", drafts[0].FineAmount)
	}
	if !strings.Contains(buf.String(), "differs from the schedule") {
		t.Fatalf("expected divergence warning, log was: %s", buf.String())
	}
}
