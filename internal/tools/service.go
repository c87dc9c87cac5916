package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
	"github.com/vora-labs/gogo-admin/pkg/validation"
)

// Service exposes tool catalog management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ToolDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ToolDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	GetByID(ctx context.Context, id uuid.UUID) (*ToolDTO, error)
	List(ctx context.Context, filters ListFilters) (pagination.Page[ListRow], error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the tool service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tool repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func errToolNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "tool not found")
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ToolDTO, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	tool := &models.Tool{
		ID:                 uuid.New(),
		Category:           input.Category,
		ToolCode:           input.ToolCode,
		InternalUsageLimit: input.InternalUsageLimit,
		IsFree:             input.IsFree,
		Tier:               input.Tier,
		IconImageURL:       input.IconImageURL,
		IsActive:           input.IsActive == nil || *input.IsActive,
	}
	rows := i18nRows(tool.ID, input.I18n)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, tool); err != nil {
			return err
		}
		return txRepo.InsertI18n(ctx, rows)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create tool")
	}

	s.logg.Info(s.logg.WithField(ctx, "tool_id", tool.ID.String()), "tool created")
	return s.GetByID(ctx, tool.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ToolDTO, error) {
	input.normalize()
	if err := validation.Struct(input.check()); err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		found, err := txRepo.UpdateColumns(ctx, id, input.changes(s.now()))
		if err != nil {
			return err
		}
		if !found {
			return errToolNotFound()
		}
		if len(input.I18n) > 0 {
			return txRepo.ReplaceI18n(ctx, id, i18nRows(id, input.I18n))
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update tool")
	}

	s.logg.Info(s.logg.WithField(ctx, "tool_id", id.String()), "tool updated")
	return s.GetByID(ctx, id)
}

// Delete removes the tool physically. Products bundling it lose the entry.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return errToolNotFound()
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete tool")
	}
	s.logg.Info(s.logg.WithField(ctx, "tool_id", id.String()), "tool deleted")
	return nil
}

func (s *service) ToggleStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	found, err := s.repo.SetActive(ctx, id, isActive, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update tool status")
	}
	if !found {
		return errToolNotFound()
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"tool_id": id.String(), "is_active": isActive}), "tool status changed")
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ToolDTO, error) {
	tool, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errToolNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool")
	}
	rows, err := s.repo.ListI18n(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tool i18n")
	}
	return newToolDTO(tool, rows), nil
}

// List pages the tool table. The search matches tool codes as well as
// localized names and descriptions.
func (s *service) List(ctx context.Context, filters ListFilters) (pagination.Page[ListRow], error) {
	filters = filters.normalized()

	var ids []uuid.UUID
	if filters.Search != "" {
		matched, err := s.repo.MatchingToolIDs(ctx, filters.Search)
		if err != nil {
			return pagination.Page[ListRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search tools")
		}
		ids = matched
	}

	total, err := s.repo.Count(ctx, filters, ids)
	if err != nil {
		return pagination.Page[ListRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tools")
	}
	rows, err := s.repo.List(ctx, filters, ids)
	if err != nil {
		return pagination.Page[ListRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tools")
	}
	return pagination.NewPage(rows, total, filters.Page), nil
}
