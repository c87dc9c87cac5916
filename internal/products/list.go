package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Sort keys accepted by the product list.
const (
	SortByName      = "name"
	SortByIsActive  = "isActive"
	SortByCreatedAt = "createdAt"
)

// ListFilters describe the supported knobs for the admin product table.
type ListFilters struct {
	Search    string
	Status    enums.ProductStatusFilter
	SortBy    string
	SortOrder pagination.SortOrder
	Page      int
	Locale    enums.LanguageCode
}

func (f ListFilters) normalized() ListFilters {
	out := f
	out.Search = strings.TrimSpace(f.Search)
	if !out.Status.IsValid() {
		out.Status = enums.ProductStatusAll
	}
	switch out.SortBy {
	case SortByName, SortByIsActive, SortByCreatedAt:
	default:
		out.SortBy = SortByCreatedAt
	}
	if out.SortOrder != pagination.SortAsc {
		out.SortOrder = pagination.SortDesc
	}
	out.Page = pagination.NormalizePage(f.Page)
	if !out.Locale.IsValid() {
		out.Locale = enums.LanguageKR
	}
	return out
}

// ListRow is one line of the product table.
type ListRow struct {
	ID           uuid.UUID          `json:"id"`
	ProductCode  string             `json:"productCode"`
	Type         enums.ProductType  `json:"type"`
	Name         *string            `json:"name"`
	USDPrice     *decimal.Decimal   `json:"usdPrice"`
	KRWPrice     *decimal.Decimal   `json:"krwPrice"`
	JPYPrice     *decimal.Decimal   `json:"jpyPrice"`
	IsActive     bool               `json:"isActive"`
	BillingCycle enums.BillingCycle `json:"billingCycle"`
	DeletedAt    *time.Time         `json:"deletedAt"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type listRecord struct {
	ID           uuid.UUID
	ProductCode  string
	Type         string
	Name         *string
	USDPrice     decimal.NullDecimal `gorm:"column:usd_price"`
	KRWPrice     decimal.NullDecimal `gorm:"column:krw_price"`
	JPYPrice     decimal.NullDecimal `gorm:"column:jpy_price"`
	IsActive     bool
	BillingCycle string
	DeletedAt    *time.Time
	CreatedAt    time.Time
}

func (r listRecord) toRow() ListRow {
	return ListRow{
		ID:           r.ID,
		ProductCode:  r.ProductCode,
		Type:         enums.ProductType(r.Type),
		Name:         r.Name,
		USDPrice:     nullDecimalPtr(r.USDPrice),
		KRWPrice:     nullDecimalPtr(r.KRWPrice),
		JPYPrice:     nullDecimalPtr(r.JPYPrice),
		IsActive:     r.IsActive,
		BillingCycle: enums.BillingCycle(r.BillingCycle),
		DeletedAt:    r.DeletedAt,
		CreatedAt:    r.CreatedAt,
	}
}

func nullDecimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	v := value.Decimal
	return &v
}
