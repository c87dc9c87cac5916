package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Service exposes the read side of admin management and the activity log.
type Service interface {
	List(ctx context.Context, filters ListFilters) (pagination.Page[AdminDTO], error)
	GetDetail(ctx context.Context, id uuid.UUID) (*AdminDetail, error)
	ListActivity(ctx context.Context, filters ActivityFilters) (pagination.Page[ActivityRow], error)
	RecordActivity(ctx context.Context, input ActivityInput) error
}

// ActivityInput is one admin action to append to the log.
type ActivityInput struct {
	AdminID   uuid.UUID
	Action    string
	Target    string
	IPAddress string
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs the admin management service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) (pagination.Page[AdminDTO], error) {
	filters = filters.normalized()
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return pagination.Page[AdminDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
	}
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return pagination.Page[AdminDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins")
	}
	dtos := make([]AdminDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return pagination.NewPage(dtos, total, filters.Page), nil
}

func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*AdminDetail, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	entries, err := s.repo.RecentActivity(ctx, id, RecentActivityLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin activity")
	}
	detail := &AdminDetail{AdminDTO: *FromModel(admin), Activity: make([]ActivityDTO, 0, len(entries))}
	for _, entry := range entries {
		item := ActivityDTO{ID: entry.ID, Action: entry.Action, Target: entry.Target, CreatedAt: entry.CreatedAt}
		if entry.IPAddress != nil {
			item.IPAddress = *entry.IPAddress
		}
		detail.Activity = append(detail.Activity, item)
	}
	return detail, nil
}

func (s *service) ListActivity(ctx context.Context, filters ActivityFilters) (pagination.Page[ActivityRow], error) {
	filters.Page = pagination.NormalizePage(filters.Page)
	total, err := s.repo.CountActivity(ctx, filters)
	if err != nil {
		return pagination.Page[ActivityRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admin activity")
	}
	rows, err := s.repo.ListActivity(ctx, filters)
	if err != nil {
		return pagination.Page[ActivityRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admin activity")
	}
	return pagination.NewPage(rows, total, filters.Page), nil
}

func (s *service) RecordActivity(ctx context.Context, input ActivityInput) error {
	if input.AdminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id required")
	}
	entry := &models.AdminActivity{
		AdminID: input.AdminID,
		Action:  strings.TrimSpace(input.Action),
		Target:  strings.TrimSpace(input.Target),
	}
	if ip := strings.TrimSpace(input.IPAddress); ip != "" {
		entry.IPAddress = &ip
	}
	if err := s.repo.RecordActivity(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record admin activity")
	}
	return nil
}
