package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

// ProductInput is the full aggregate submitted by the admin product form.
// Create and update share it; update additionally honors ExpectedVersion.
type ProductInput struct {
	Type            enums.ProductType  `json:"type" validate:"required,oneof=SUBSCRIPTION PURCHASE"`
	Category        *string            `json:"category"`
	BillingCycle    enums.BillingCycle `json:"billingCycle" validate:"required,oneof=MONTHLY YEARLY ONCE"`
	ProductCode     string             `json:"productCode" validate:"required,max=100"`
	IconImageURL    *string            `json:"iconImageUrl" validate:"omitempty,urlorempty"`
	IsActive        *bool              `json:"isActive"`
	I18n            []VariantInput     `json:"i18n" validate:"min=1,dive"`
	Tools           []ToolInput        `json:"tools" validate:"dive"`
	ExpectedVersion *int               `json:"expectedVersion,omitempty" validate:"omitempty,gte=1"`
}

// VariantInput is one localized name/description/price row.
type VariantInput struct {
	LanguageCode enums.LanguageCode `json:"languageCode" validate:"required,oneof=KR EN JP"`
	Name         string             `json:"name" validate:"required"`
	Description  *string            `json:"description"`
	CurrencyCode enums.Currency     `json:"currencyCode" validate:"required,oneof=KRW USD JPY"`
	Price        string             `json:"price" validate:"required,decimal"`
	CurrentPrice *string            `json:"currentPrice" validate:"omitempty,decimal"`
}

// ToolInput is one bundled tool row.
type ToolInput struct {
	ToolID          string `json:"toolId" validate:"required,uuid"`
	QuotaAllocation *int   `json:"quotaAllocation" validate:"omitempty,gte=0"`
	SortOrder       int    `json:"sortOrder"`
}

// normalize trims free-text fields so blank values fail required checks.
func (in *ProductInput) normalize() {
	in.ProductCode = strings.TrimSpace(in.ProductCode)
	in.Category = trimmedOrNil(in.Category)
	in.IconImageURL = trimmedOrNil(in.IconImageURL)
	for i := range in.I18n {
		v := &in.I18n[i]
		v.Name = strings.TrimSpace(v.Name)
		v.Price = strings.TrimSpace(v.Price)
		v.CurrentPrice = trimmedOrNil(v.CurrentPrice)
	}
	for i := range in.Tools {
		in.Tools[i].ToolID = strings.TrimSpace(in.Tools[i].ToolID)
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// variantRows converts validated input into rows for productID.
func (in ProductInput) variantRows(productID uuid.UUID) ([]models.ProductI18n, error) {
	rows := make([]models.ProductI18n, 0, len(in.I18n))
	for _, v := range in.I18n {
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			return nil, err
		}
		row := models.ProductI18n{
			ProductID:    productID,
			LanguageCode: v.LanguageCode,
			Name:         v.Name,
			Description:  v.Description,
			CurrencyCode: v.CurrencyCode,
			Price:        price,
		}
		if v.CurrentPrice != nil {
			current, err := decimal.NewFromString(*v.CurrentPrice)
			if err != nil {
				return nil, err
			}
			row.CurrentPrice = decimal.NewNullDecimal(current)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// toolRows converts validated input into bundle rows for productID.
func (in ProductInput) toolRows(productID uuid.UUID) ([]models.ProductTool, error) {
	rows := make([]models.ProductTool, 0, len(in.Tools))
	for _, t := range in.Tools {
		toolID, err := uuid.Parse(t.ToolID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.ProductTool{
			ProductID:       productID,
			ToolID:          toolID,
			QuotaAllocation: t.QuotaAllocation,
			SortOrder:       t.SortOrder,
		})
	}
	return rows, nil
}

// SyncReport is the billing outcome attached to a mutation result.
type SyncReport struct {
	Status          enums.SyncStatus `json:"status"`
	RemoteProductID string           `json:"remoteProductId,omitempty"`
	RemotePriceID   string           `json:"remotePriceId,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// MutationResult reports a committed catalog write and, separately, its sync outcome.
type MutationResult struct {
	ProductID uuid.UUID  `json:"productId"`
	Version   int        `json:"version"`
	Sync      SyncReport `json:"sync"`
}

// ProductDTO is the full aggregate returned by the detail endpoint.
type ProductDTO struct {
	ID              uuid.UUID             `json:"id"`
	Type            enums.ProductType     `json:"type"`
	Category        *string               `json:"category"`
	BillingCycle    enums.BillingCycle    `json:"billingCycle"`
	ProductCode     string                `json:"productCode"`
	IconImageURL    *string               `json:"iconImageUrl"`
	IsActive        bool                  `json:"isActive"`
	BillingMetadata types.BillingMetadata `json:"billingMetadata"`
	Version         int                   `json:"version"`
	DeletedAt       *time.Time            `json:"deletedAt"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	I18n            []VariantDTO          `json:"i18n"`
	Tools           []BundledToolDTO      `json:"tools"`
}

// VariantDTO exposes a stored localized variant.
type VariantDTO struct {
	ID           uuid.UUID          `json:"id"`
	LanguageCode enums.LanguageCode `json:"languageCode"`
	Name         string             `json:"name"`
	Description  *string            `json:"description"`
	CurrencyCode enums.Currency     `json:"currencyCode"`
	Price        decimal.Decimal    `json:"price"`
	CurrentPrice *decimal.Decimal   `json:"currentPrice"`
}

// BundledToolDTO is a tool granted by the product, with its display name resolved.
type BundledToolDTO struct {
	ID              uuid.UUID `json:"id"`
	ToolID          uuid.UUID `json:"toolId"`
	ToolCode        string    `json:"toolCode"`
	Name            string    `json:"name"`
	QuotaAllocation *int      `json:"quotaAllocation"`
	SortOrder       int       `json:"sortOrder"`
}

// BundlableToolDTO is a tool search hit for the bundle picker.
type BundlableToolDTO struct {
	ID       uuid.UUID `json:"id"`
	ToolCode string    `json:"toolCode"`
	Name     string    `json:"name"`
}

// Variant returns the variant for lang, if present.
func (p *ProductDTO) Variant(lang enums.LanguageCode) (VariantDTO, bool) {
	for _, v := range p.I18n {
		if v.LanguageCode == lang {
			return v, true
		}
	}
	return VariantDTO{}, false
}

// PriceFor returns the price of the lang variant, or zero when it is missing.
func (p *ProductDTO) PriceFor(lang enums.LanguageCode) decimal.Decimal {
	if v, ok := p.Variant(lang); ok {
		return v.Price
	}
	return decimal.Zero
}

func newProductDTO(product *models.Product, variants []models.ProductI18n, tools []BundledToolDTO) *ProductDTO {
	dto := &ProductDTO{
		ID:              product.ID,
		Type:            product.Type,
		Category:        product.Category,
		BillingCycle:    product.BillingCycle,
		ProductCode:     product.ProductCode,
		IconImageURL:    product.IconImageURL,
		IsActive:        product.IsActive,
		BillingMetadata: product.BillingMetadata,
		Version:         product.Version,
		DeletedAt:       product.DeletedAt,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
		I18n:            make([]VariantDTO, 0, len(variants)),
		Tools:           tools,
	}
	if dto.Tools == nil {
		dto.Tools = []BundledToolDTO{}
	}
	for _, v := range variants {
		item := VariantDTO{
			ID:           v.ID,
			LanguageCode: v.LanguageCode,
			Name:         v.Name,
			Description:  v.Description,
			CurrencyCode: v.CurrencyCode,
			Price:        v.Price,
		}
		if v.CurrentPrice.Valid {
			current := v.CurrentPrice.Decimal
			item.CurrentPrice = &current
		}
		dto.I18n = append(dto.I18n, item)
	}
	return dto
}
