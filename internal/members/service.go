package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Service is the read-only member view of the admin dashboard.
type Service interface {
	List(ctx context.Context, filters ListFilters) (pagination.Page[Member], error)
	GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs the member service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) (pagination.Page[Member], error) {
	filters = filters.normalized()
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return pagination.Page[Member]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return pagination.Page[Member]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	accounts, err := s.repo.Accounts(ctx, ids)
	if err != nil {
		return pagination.Page[Member]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member accounts")
	}
	sessions, err := s.repo.LatestSessions(ctx, ids)
	if err != nil {
		return pagination.Page[Member]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member sessions")
	}

	providers := map[uuid.UUID]string{}
	for _, a := range accounts {
		if _, ok := providers[a.UserID]; !ok {
			providers[a.UserID] = a.ProviderID
		}
	}
	latest := map[uuid.UUID]models.UserSession{}
	for _, sess := range sessions {
		current, ok := latest[sess.UserID]
		if !ok || newer(sess.CreatedAt, current.CreatedAt) {
			latest[sess.UserID] = sess
		}
	}

	rows := make([]Member, 0, len(users))
	for i := range users {
		member := newMember(&users[i], providers[users[i].ID])
		if sess, ok := latest[users[i].ID]; ok {
			member.LastLoginAt = sess.CreatedAt
		}
		rows = append(rows, member)
	}
	return pagination.NewPage(rows, total, filters.Page), nil
}

func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	accounts, err := s.repo.Accounts(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member accounts")
	}
	sessions, err := s.repo.RecentSessions(ctx, id, recentSessionLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member sessions")
	}
	purchases, err := s.repo.Purchases(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member purchases")
	}
	transactions, err := s.repo.RecentTransactions(ctx, id, recentTransactionLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member transactions")
	}

	provider := ""
	if len(accounts) > 0 {
		provider = accounts[0].ProviderID
	}
	detail := &Detail{
		Member:           newMember(user, provider),
		LanguageCode:     defaultLanguageCode,
		OnboardingStatus: user.OnboardingStatus,
		Accounts:         make([]Account, 0, len(accounts)),
		Sessions:         make([]Session, 0, len(sessions)),
		Purchases:        make([]Purchase, 0, len(purchases)),
	}
	if user.LanguageCode != nil && *user.LanguageCode != "" {
		detail.LanguageCode = *user.LanguageCode
	}
	if len(sessions) > 0 {
		detail.LastLoginAt = sessions[0].CreatedAt
	}
	for _, a := range accounts {
		detail.Accounts = append(detail.Accounts, Account{ID: a.ID, ProviderID: a.ProviderID, AccountID: a.AccountID, CreatedAt: a.CreatedAt})
	}
	for _, sess := range sessions {
		detail.Sessions = append(detail.Sessions, Session{ID: sess.ID, IPAddress: sess.IPAddress, UserAgent: sess.UserAgent, CreatedAt: sess.CreatedAt})
	}

	names, err := s.productNames(ctx, purchases, detail.LanguageCode)
	if err != nil {
		return nil, err
	}
	payment := billedTransaction(transactions)
	for _, p := range purchases {
		item := Purchase{
			ID:                 p.ID,
			ProductName:        unknownProductName,
			Status:             "UNKNOWN",
			CurrentPeriodStart: p.CurrentPeriodStart,
			CurrentPeriodEnd:   p.CurrentPeriodEnd,
		}
		if p.ProductID != nil {
			if name, ok := names[*p.ProductID]; ok {
				item.ProductName = name
			}
		}
		if p.Status != nil && *p.Status != "" {
			item.Status = *p.Status
		}
		if payment != nil {
			item.Amount = payment.Amount
			item.Currency = payment.CurrencyCode
		}
		detail.Purchases = append(detail.Purchases, item)
	}
	return detail, nil
}

// productNames labels purchased products in lang, then EN, then KR, then by
// product code.
func (s *service) productNames(ctx context.Context, purchases []models.UserPurchase, lang string) (map[uuid.UUID]string, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, p := range purchases {
		if p.ProductID != nil && !seen[*p.ProductID] {
			seen[*p.ProductID] = true
			ids = append(ids, *p.ProductID)
		}
	}
	products, i18n, err := s.repo.ProductNames(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchased products")
	}

	localized := map[uuid.UUID]map[string]string{}
	for _, row := range i18n {
		if localized[row.ProductID] == nil {
			localized[row.ProductID] = map[string]string{}
		}
		localized[row.ProductID][string(row.LanguageCode)] = row.Name
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, product := range products {
		names[product.ID] = product.ProductCode
		for _, code := range []string{lang, "EN", "KR"} {
			if name := localized[product.ID][code]; name != "" {
				names[product.ID] = name
				break
			}
		}
	}
	return names, nil
}

// billedTransaction picks the newest transaction that records a payment or a
// subscription change.
func billedTransaction(transactions []models.PaymentTransaction) *models.PaymentTransaction {
	for i := range transactions {
		status := transactions[i].Status
		if status == nil {
			continue
		}
		if strings.Contains(*status, "SUBSCRIPTION") || strings.Contains(*status, "PAID") {
			return &transactions[i]
		}
	}
	return nil
}

func newMember(u *models.User, provider string) Member {
	if provider == "" {
		provider = defaultProvider
	}
	m := Member{
		ID:        u.ID,
		Name:      u.Name,
		Provider:  provider,
		Status:    MapStatus(u.Status),
		CreatedAt: u.CreatedAt,
	}
	if u.Email != nil {
		m.Email = *u.Email
	}
	if u.ProfileImageURL != nil {
		m.Image = *u.ProfileImageURL
	}
	return m
}

func newer(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	return b == nil || a.After(*b)
}
