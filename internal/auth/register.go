package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/arjunmehta/roadwatch-backend/internal/officers"
	"github.com/arjunmehta/roadwatch-backend/pkg/config"
	"github.com/arjunmehta/roadwatch-backend/pkg/db"
	"github.com/arjunmehta/roadwatch-backend/pkg/enums"
	pkgerrors "github.com/arjunmehta/roadwatch-backend/pkg/errors"
	"github.com/arjunmehta/roadwatch-backend/pkg/security"
)

// RegisterRequest contains the payload required for onboarding a new officer.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Station  string  `json:"station" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
}

// RegisterService handles officer onboarding.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*officers.OfficerDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*officers.OfficerDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *officers.OfficerDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := officers.NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check officer email")
		}

		officer, err := repo.Create(ctx, officers.CreateOfficerDTO{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: passwordHash,
			Role:         enums.OfficerRolePolice,
			Station:      strings.TrimSpace(req.Station),
			Phone:        req.Phone,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create officer")
		}

		created = officers.FromModel(officer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
