package admins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Repository exposes admin account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new admin and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateAdminDTO) (*models.Admin, error) {
	admin := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// FindByEmail retrieves the admin matching the lower-cased email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID loads an admin by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpdateLastLogin refreshes last_login_at.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash stores a re-hashed password.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.Admin{})
	if filters.Role != "" {
		qb = qb.Where("role = ?", filters.Role)
	}
	switch filters.Status {
	case enums.ProductStatusActive:
		qb = qb.Where("is_active = ?", true)
	case enums.ProductStatusInactive:
		qb = qb.Where("is_active = ?", false)
	}
	if filters.Search != "" {
		pattern := db.ContainsPattern(filters.Search)
		qb = qb.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return qb
}

// Count counts the admins List would page over.
func (r *Repository) Count(ctx context.Context, filters ListFilters) (int64, error) {
	var total int64
	err := r.filtered(ctx, filters).Count(&total).Error
	return total, err
}

// List returns one page of admins.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Admin, error) {
	var rows []models.Admin
	err := r.filtered(ctx, filters).
		Order(sortColumns[filters.SortBy] + " " + filters.SortOrder.SQL()).
		Order("id ASC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset(filters.Page)).
		Find(&rows).
		Error
	return rows, err
}

// RecordActivity appends an activity entry.
func (r *Repository) RecordActivity(ctx context.Context, entry *models.AdminActivity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecentActivity returns the newest limit entries of adminID.
func (r *Repository) RecentActivity(ctx context.Context, adminID uuid.UUID, limit int) ([]models.AdminActivity, error) {
	var rows []models.AdminActivity
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) activity(ctx context.Context, filters ActivityFilters) *gorm.DB {
	qb := r.db.WithContext(ctx).Table("admin_activity_logs l")
	if filters.AdminID != nil {
		qb = qb.Where("l.admin_id = ?", *filters.AdminID)
	}
	return qb
}

// CountActivity counts the entries ListActivity pages over.
func (r *Repository) CountActivity(ctx context.Context, filters ActivityFilters) (int64, error) {
	var total int64
	err := r.activity(ctx, filters).Count(&total).Error
	return total, err
}

// ListActivity returns one page of the activity log, newest first.
func (r *Repository) ListActivity(ctx context.Context, filters ActivityFilters) ([]ActivityRow, error) {
	var records []activityRecord
	err := r.activity(ctx, filters).
		Select("l.id, l.admin_id, l.action, l.target, l.ip_address, l.created_at, a.name AS admin_name, a.email AS admin_email").
		Joins("LEFT JOIN admins a ON a.id = l.admin_id").
		Order("l.created_at DESC").
		Order("l.id ASC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset(filters.Page)).
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}
	rows := make([]ActivityRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.toRow())
	}
	return rows, nil
}
