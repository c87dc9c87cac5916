package tool

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

// Repository persists tools and their localized rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	var tool models.Tool
	if err := r.db.WithContext(ctx).First(&tool, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tool, nil
}

func (r *Repository) Create(ctx context.Context, tool *models.Tool) error {
	return r.db.WithContext(ctx).Create(tool).Error
}

// InsertI18n bulk inserts localized rows.
func (r *Repository) InsertI18n(ctx context.Context, rows []models.ToolI18n) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ReplaceI18n swaps the localized set of toolID for rows.
func (r *Repository) ReplaceI18n(ctx context.Context, toolID uuid.UUID, rows []models.ToolI18n) error {
	if err := r.db.WithContext(ctx).Where("tool_id = ?", toolID).Delete(&models.ToolI18n{}).Error; err != nil {
		return err
	}
	return r.InsertI18n(ctx, rows)
}

func (r *Repository) ListI18n(ctx context.Context, toolID uuid.UUID) ([]models.ToolI18n, error) {
	var rows []models.ToolI18n
	err := r.db.WithContext(ctx).
		Where("tool_id = ?", toolID).
		Order("language_code ASC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateColumns applies a column map and reports whether the row exists.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, changes map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Tool{}).
		Where("id = ?", id).
		Updates(changes)
	return res.RowsAffected > 0, res.Error
}

// SetActive flips is_active and reports whether the row exists.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) (bool, error) {
	return r.UpdateColumns(ctx, id, map[string]any{"is_active": active, "updated_at": now})
}

// Delete removes the tool with its localized rows and bundle entries.
// The foreign keys cascade on postgres; the explicit deletes keep other
// dialects consistent.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("tool_id = ?", id).Delete(&models.ToolI18n{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("tool_id = ?", id).Delete(&models.ProductTool{}).Error; err != nil {
		return false, err
	}
	res := db.Where("id = ?", id).Delete(&models.Tool{})
	return res.RowsAffected > 0, res.Error
}

// MatchingToolIDs returns tools whose localized name or description contains
// search in any language.
func (r *Repository) MatchingToolIDs(ctx context.Context, search string) ([]uuid.UUID, error) {
	pattern := db.ContainsPattern(search)
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ToolI18n{}).
		Distinct("tool_id").
		Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern).
		Pluck("tool_id", &ids).
		Error
	return ids, err
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters, ids []uuid.UUID) *gorm.DB {
	qb := r.db.WithContext(ctx).Table("tools t")
	switch filters.Status {
	case enums.ProductStatusActive:
		qb = qb.Where("t.is_active = ?", true)
	case enums.ProductStatusInactive:
		qb = qb.Where("t.is_active = ?", false)
	}
	if filters.Search != "" {
		pattern := db.ContainsPattern(filters.Search)
		if len(ids) > 0 {
			qb = qb.Where("(LOWER(t.tool_code) LIKE ? ESCAPE '\\' OR t.id IN ?)", pattern, ids)
		} else {
			qb = qb.Where("LOWER(t.tool_code) LIKE ? ESCAPE '\\'", pattern)
		}
	}
	return qb
}

// Count counts the rows List would page over.
func (r *Repository) Count(ctx context.Context, filters ListFilters, ids []uuid.UUID) (int64, error) {
	var total int64
	err := r.filtered(ctx, filters, ids).Count(&total).Error
	return total, err
}

const listColumns = `t.id,
       t.tool_code,
       t.category,
       COALESCE(
         (SELECT ti.name FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = ? LIMIT 1),
         (SELECT ti.name FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = 'KR' LIMIT 1),
         (SELECT ti.name FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = 'EN' LIMIT 1)
       ) AS name,
       COALESCE(
         (SELECT ti.description FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = ? LIMIT 1),
         (SELECT ti.description FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = 'KR' LIMIT 1),
         (SELECT ti.description FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = 'EN' LIMIT 1)
       ) AS description,
       t.internal_usage_limit,
       t.is_free,
       t.tier,
       t.icon_image_url,
       t.is_active,
       t.created_at,
       t.updated_at`

// List returns one page of tool rows.
func (r *Repository) List(ctx context.Context, filters ListFilters, ids []uuid.UUID) ([]ListRow, error) {
	var records []listRecord
	err := r.filtered(ctx, filters, ids).
		Select(listColumns, filters.Locale, filters.Locale).
		Order(sortColumns[filters.SortBy] + " " + filters.SortOrder.SQL()).
		Order("t.id ASC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset(filters.Page)).
		Scan(&records).
		Error
	if err != nil {
		return nil, err
	}
	rows := make([]ListRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.toRow())
	}
	return rows, nil
}
