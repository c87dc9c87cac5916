package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/internal/admins"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/db"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/security"
	"github.com/vora-labs/gogo-admin/pkg/validation"
)

// RegisterService creates admin accounts. Routes only mount it outside production.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams names the dependencies for the admin register flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds an admin registration service.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var tempPassword string
	if req.Password == "" {
		generated, err := security.GenerateTempPassword(security.TempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		req.Password = generated
		tempPassword = generated
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *admins.AdminDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := admins.NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, req.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin email")
		}

		admin, err := repo.Create(ctx, admins.CreateAdminDTO{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: passwordHash,
			Role:         req.Role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "ux_admins_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
		}
		created = admins.FromModel(admin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &RegisterResponse{Admin: created, TempPassword: tempPassword}, nil
}
