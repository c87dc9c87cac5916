package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

// Product is the base row of a catalog aggregate.
type Product struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Type            enums.ProductType     `gorm:"column:type;type:product_type_enum;not null"`
	Category        *string               `gorm:"column:category"`
	BillingCycle    enums.BillingCycle    `gorm:"column:billing_cycle;type:billing_cycle_enum;not null"`
	ProductCode     string                `gorm:"column:product_code;not null"`
	IconImageURL    *string               `gorm:"column:icon_image_url"`
	IsActive        bool                  `gorm:"column:is_active;not null"`
	BillingMetadata types.BillingMetadata `gorm:"column:billing_metadata;type:jsonb;not null"`
	Version         int                   `gorm:"column:version;not null"`
	DeletedAt       *time.Time            `gorm:"column:deleted_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

// ProductI18n is a per-language presentation and per-currency price.
type ProductI18n struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index:idx_product_i18n_product_id"`
	LanguageCode enums.LanguageCode  `gorm:"column:language_code;type:language_code_enum;not null"`
	Name         string              `gorm:"column:name;not null"`
	Description  *string             `gorm:"column:description"`
	CurrencyCode enums.Currency      `gorm:"column:currency_code;type:currency_code_enum;not null"`
	Price        decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	CurrentPrice decimal.NullDecimal `gorm:"column:current_price;type:numeric(12,2)"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductI18n) TableName() string { return "products_i18n" }

func (p *ProductI18n) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductTool grants a product's purchasers access to a tool.
type ProductTool struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_product_tools_product_id"`
	ToolID          uuid.UUID `gorm:"column:tool_id;type:uuid;not null;index:idx_product_tools_tool_id"`
	QuotaAllocation *int      `gorm:"column:quota_allocation"`
	SortOrder       int       `gorm:"column:sort_order;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductTool) TableName() string { return "product_tools" }

func (p *ProductTool) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
