package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/locale"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

// BundlableToolLimit caps the bundle picker search.
const BundlableToolLimit = 20

var errVersionConflict = errors.New("product version changed")

// Repository wires together product aggregate persistence helpers.
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

// FindByID loads the product base row, including soft-deleted rows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// InsertVariants bulk inserts localized variants.
func (r *Repository) InsertVariants(ctx context.Context, rows []models.ProductI18n) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// InsertTools bulk inserts bundle rows.
func (r *Repository) InsertTools(ctx context.Context, rows []models.ProductTool) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ReplaceVariants deletes every variant of the product and inserts rows.
func (r *Repository) ReplaceVariants(ctx context.Context, productID uuid.UUID, rows []models.ProductI18n) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductI18n{}).Error; err != nil {
		return err
	}
	return r.InsertVariants(ctx, rows)
}

// ReplaceTools deletes every bundle row of the product and inserts rows.
func (r *Repository) ReplaceTools(ctx context.Context, productID uuid.UUID, rows []models.ProductTool) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductTool{}).Error; err != nil {
		return err
	}
	return r.InsertTools(ctx, rows)
}

// UpdateBase writes the mutable base fields and bumps the version, but only
// while the stored version still equals fromVersion.
func (r *Repository) UpdateBase(ctx context.Context, product *models.Product, fromVersion int, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND version = ?", product.ID, fromVersion).
		Updates(map[string]any{
			"type":           product.Type,
			"category":       product.Category,
			"billing_cycle":  product.BillingCycle,
			"product_code":   product.ProductCode,
			"icon_image_url": product.IconImageURL,
			"is_active":      product.IsActive,
			"version":        fromVersion + 1,
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errVersionConflict
	}
	product.Version = fromVersion + 1
	product.UpdatedAt = now
	return nil
}

// SoftDelete deactivates the product and stamps deleted_at once.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"is_active":  false,
			"deleted_at": now,
			"updated_at": now,
		}).Error
}

// ListVariants returns every variant of the product ordered by language.
func (r *Repository) ListVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductI18n, error) {
	var rows []models.ProductI18n
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("language_code ASC").
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

const toolNameColumns = `
       (SELECT ti.name FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = ? ORDER BY ti.created_at LIMIT 1) AS requested_name,
       (SELECT ti.name FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = 'KR' ORDER BY ti.created_at LIMIT 1) AS korean_name,
       (SELECT ti.name FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code = 'EN' ORDER BY ti.created_at LIMIT 1) AS english_name`

const bundledToolsQuery = `
SELECT pt.id,
       pt.tool_id,
       t.tool_code,
       pt.quota_allocation,
       pt.sort_order,` + toolNameColumns + `
FROM product_tools pt
JOIN tools t ON t.id = pt.tool_id
WHERE pt.product_id = ?
ORDER BY pt.sort_order ASC, pt.created_at ASC
`

func resolveToolName(requested, korean, english *string, code string) string {
	return locale.ResolveDisplayName(deref(requested), deref(korean), deref(english), code)
}

// ListBundledTools returns the product's tools ordered by sort_order with
// display names resolved for lang.
func (r *Repository) ListBundledTools(ctx context.Context, productID uuid.UUID, lang enums.LanguageCode) ([]BundledToolDTO, error) {
	type record struct {
		ID              uuid.UUID
		ToolID          uuid.UUID
		ToolCode        string
		QuotaAllocation *int
		SortOrder       int
		RequestedName   *string
		KoreanName      *string
		EnglishName     *string
	}
	var records []record
	if err := r.db.WithContext(ctx).Raw(bundledToolsQuery, lang, productID).Scan(&records).Error; err != nil {
		return nil, err
	}
	out := make([]BundledToolDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, BundledToolDTO{
			ID:              rec.ID,
			ToolID:          rec.ToolID,
			ToolCode:        rec.ToolCode,
			Name:            resolveToolName(rec.RequestedName, rec.KoreanName, rec.EnglishName, rec.ToolCode),
			QuotaAllocation: rec.QuotaAllocation,
			SortOrder:       rec.SortOrder,
		})
	}
	return out, nil
}

// SearchBundlableTools matches query against tool codes and the tool name in
// lang, Korean, or English. At most BundlableToolLimit rows are returned.
func (r *Repository) SearchBundlableTools(ctx context.Context, query string, lang enums.LanguageCode) ([]BundlableToolDTO, error) {
	type record struct {
		ID            uuid.UUID
		ToolCode      string
		RequestedName *string
		KoreanName    *string
		EnglishName   *string
	}

	qb := r.db.WithContext(ctx).
		Table("tools t").
		Select("t.id, t.tool_code,"+toolNameColumns, lang)
	if query != "" {
		pattern := db.ContainsPattern(query)
		qb = qb.Where(
			"(LOWER(t.tool_code) LIKE ? ESCAPE '\\' OR EXISTS (SELECT 1 FROM tool_i18n ti WHERE ti.tool_id = t.id AND ti.language_code IN (?, 'KR', 'EN') AND LOWER(ti.name) LIKE ? ESCAPE '\\'))",
			pattern, lang, pattern,
		)
	}
	var records []record
	if err := qb.Order("t.tool_code ASC").Limit(BundlableToolLimit).Scan(&records).Error; err != nil {
		return nil, err
	}
	out := make([]BundlableToolDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, BundlableToolDTO{
			ID:       rec.ID,
			ToolCode: rec.ToolCode,
			Name:     resolveToolName(rec.RequestedName, rec.KoreanName, rec.EnglishName, rec.ToolCode),
		})
	}
	return out, nil
}

// MatchingProductIDs returns products with a variant name or description
// containing search in any language.
func (r *Repository) MatchingProductIDs(ctx context.Context, search string) ([]uuid.UUID, error) {
	pattern := db.ContainsPattern(search)
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProductI18n{}).
		Distinct("product_id").
		Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\\')", pattern, pattern).
		Pluck("product_id", &ids).
		Error
	return ids, err
}

func (r *Repository) filteredProducts(ctx context.Context, filters ListFilters, ids []uuid.UUID) *gorm.DB {
	qb := r.db.WithContext(ctx).Table("products p")
	switch filters.Status {
	case enums.ProductStatusActive:
		qb = qb.Where("p.is_active = ?", true)
	case enums.ProductStatusInactive:
		qb = qb.Where("p.is_active = ?", false)
	}
	if ids != nil {
		qb = qb.Where("p.id IN ?", ids)
	}
	return qb
}

// CountProducts counts the rows list would page over.
func (r *Repository) CountProducts(ctx context.Context, filters ListFilters, ids []uuid.UUID) (int64, error) {
	var total int64
	err := r.filteredProducts(ctx, filters, ids).Count(&total).Error
	return total, err
}

const listColumns = `p.id,
       p.product_code,
       p.type,
       COALESCE(
         (SELECT v.name FROM products_i18n v WHERE v.product_id = p.id AND v.language_code = ? ORDER BY v.created_at LIMIT 1),
         (SELECT v.name FROM products_i18n v WHERE v.product_id = p.id AND v.language_code = 'EN' ORDER BY v.created_at LIMIT 1)
       ) AS name,
       (SELECT v.price FROM products_i18n v WHERE v.product_id = p.id AND v.currency_code = 'USD' ORDER BY v.created_at LIMIT 1) AS usd_price,
       (SELECT v.price FROM products_i18n v WHERE v.product_id = p.id AND v.currency_code = 'KRW' ORDER BY v.created_at LIMIT 1) AS krw_price,
       (SELECT v.price FROM products_i18n v WHERE v.product_id = p.id AND v.currency_code = 'JPY' ORDER BY v.created_at LIMIT 1) AS jpy_price,
       p.is_active,
       p.billing_cycle,
       p.deleted_at,
       p.created_at`

// ListProducts returns one page of list rows.
func (r *Repository) ListProducts(ctx context.Context, filters ListFilters, ids []uuid.UUID) ([]ListRow, error) {
	sortColumn := "p.created_at"
	switch filters.SortBy {
	case SortByName:
		sortColumn = "name"
	case SortByIsActive:
		sortColumn = "p.is_active"
	}

	var records []listRecord
	err := r.filteredProducts(ctx, filters, ids).
		Select(listColumns, filters.Locale).
		Order(sortColumn + " " + filters.SortOrder.SQL()).
		Order("p.id ASC").
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

// MergeBillingMetadata overlays update onto the stored billing metadata in
// its own transaction. updated_at is left alone so drift detection keeps
// comparing against the last catalog edit.
func (r *Repository) MergeBillingMetadata(ctx context.Context, productID uuid.UUID, update types.BillingMetadata) (types.BillingMetadata, error) {
	var merged types.BillingMetadata
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Select("id", "billing_metadata")
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var product models.Product
		if err := query.First(&product, "id = ?", productID).Error; err != nil {
			return err
		}
		merged = product.BillingMetadata.Merge(update)
		return tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("billing_metadata", merged).
			Error
	})
	return merged, err
}

// ListSyncCandidates pages active, non-deleted products by id for drift checks.
func (r *Repository) ListSyncCandidates(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Select("id", "updated_at", "billing_metadata", "version").
		Where("is_active = ? AND deleted_at IS NULL", true)
	if afterID != uuid.Nil {
		qb = qb.Where("id > ?", afterID)
	}
	var rows []models.Product
	err := qb.Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
