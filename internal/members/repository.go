package members

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Repository reads member tables owned by the consumer app.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Search != "" {
		pattern := db.ContainsPattern(filters.Search)
		qb = qb.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return qb
}

// Count counts the members List would page over.
func (r *Repository) Count(ctx context.Context, filters ListFilters) (int64, error) {
	var total int64
	err := r.filtered(ctx, filters).Count(&total).Error
	return total, err
}

// List returns one page of members.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.User, error) {
	var rows []models.User
	err := r.filtered(ctx, filters).
		Order(sortColumns[filters.SortBy] + " " + filters.SortOrder.SQL()).
		Order("id ASC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset(filters.Page)).
		Find(&rows).
		Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Accounts returns the provider links of userIDs, oldest first.
func (r *Repository) Accounts(ctx context.Context, userIDs []uuid.UUID) ([]models.UserAccount, error) {
	var rows []models.UserAccount
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// LatestSessions returns the newest session of each of userIDs.
func (r *Repository) LatestSessions(ctx context.Context, userIDs []uuid.UUID) ([]models.UserSession, error) {
	var rows []models.UserSession
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Where("created_at = (SELECT MAX(s2.created_at) FROM sessions s2 WHERE s2.user_id = sessions.user_id)").
		Find(&rows).
		Error
	return rows, err
}

// RecentSessions returns the newest limit sessions of userID.
func (r *Repository) RecentSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserSession, error) {
	var rows []models.UserSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// Purchases returns every license of userID, newest first.
func (r *Repository) Purchases(ctx context.Context, userID uuid.UUID) ([]models.UserPurchase, error) {
	var rows []models.UserPurchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// RecentTransactions returns the newest limit payment transactions of userID.
func (r *Repository) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PaymentTransaction, error) {
	var rows []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ProductNames loads the products and localized rows needed to label
// purchases. Soft-deleted products are included.
func (r *Repository) ProductNames(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, []models.ProductI18n, error) {
	var products []models.Product
	var i18n []models.ProductI18n
	if len(productIDs) == 0 {
		return products, i18n, nil
	}
	conn := r.db.WithContext(ctx)
	if err := conn.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	if err := conn.Where("product_id IN ?", productIDs).Find(&i18n).Error; err != nil {
		return nil, nil, err
	}
	return products, i18n, nil
}
