package members

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Status is the member state shown to operators.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusBanned   Status = "BANNED"
)

// MapStatus folds the consumer app's user status into the admin vocabulary.
// Unknown and missing values read as inactive.
func MapStatus(raw *string) Status {
	if raw == nil {
		return StatusInactive
	}
	switch *raw {
	case "ACTIVE":
		return StatusActive
	case "SUSPENDED":
		return StatusBanned
	default:
		return StatusInactive
	}
}

const (
	defaultProvider     = "email"
	defaultLanguageCode = "KR"
	unknownProductName  = "Unknown Product"

	// Limits on the history embedded in a member detail.
	recentSessionLimit     = 5
	recentTransactionLimit = 5
)

// Sort keys accepted by the member list.
const (
	SortByName      = "name"
	SortByEmail     = "email"
	SortByCreatedAt = "createdAt"
)

var sortColumns = map[string]string{
	SortByName:      "name",
	SortByEmail:     "email",
	SortByCreatedAt: "created_at",
}

// ListFilters describe the member table.
type ListFilters struct {
	Search    string
	SortBy    string
	SortOrder pagination.SortOrder
	Page      int
}

func (f ListFilters) normalized() ListFilters {
	out := f
	out.Search = strings.TrimSpace(f.Search)
	if _, ok := sortColumns[out.SortBy]; !ok {
		out.SortBy = SortByCreatedAt
	}
	if out.SortOrder != pagination.SortAsc {
		out.SortOrder = pagination.SortDesc
	}
	out.Page = pagination.NormalizePage(f.Page)
	return out
}

// Member is one line of the member table.
type Member struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Image       string     `json:"image"`
	Provider    string     `json:"provider"`
	Status      Status     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Detail is a member with sign-in history and purchases.
type Detail struct {
	Member
	LanguageCode     string     `json:"languageCode"`
	OnboardingStatus *string    `json:"onboardingStatus"`
	Accounts         []Account  `json:"accounts"`
	Sessions         []Session  `json:"sessions"`
	Purchases        []Purchase `json:"purchases"`
}

type Account struct {
	ID         uuid.UUID  `json:"id"`
	ProviderID string     `json:"providerId"`
	AccountID  string     `json:"accountId"`
	CreatedAt  *time.Time `json:"createdAt"`
}

type Session struct {
	ID        uuid.UUID  `json:"id"`
	IPAddress *string    `json:"ipAddress"`
	UserAgent *string    `json:"userAgent"`
	CreatedAt *time.Time `json:"createdAt"`
}

// Purchase is a member license. Amount and Currency come from the member's
// latest paid or subscription transaction and are nil when there is none.
type Purchase struct {
	ID                 uuid.UUID  `json:"id"`
	ProductName        string     `json:"productName"`
	Status             string     `json:"status"`
	Amount             *int       `json:"amount"`
	Currency           *string    `json:"currency"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd"`
}
