package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// Tool is an independently cataloged capability that products bundle.
type Tool struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Category           *enums.ToolCategory `gorm:"column:category;type:tool_category_enum"`
	ToolCode           string              `gorm:"column:tool_code;not null"`
	InternalUsageLimit *int                `gorm:"column:internal_usage_limit"`
	IsFree             bool                `gorm:"column:is_free;not null"`
	Tier               *int                `gorm:"column:tier"`
	IconImageURL       *string             `gorm:"column:icon_image_url"`
	IsActive           bool                `gorm:"column:is_active;not null"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tool) TableName() string { return "tools" }

func (t *Tool) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// ToolI18n holds the localized name and description of a tool.
type ToolI18n struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ToolID       uuid.UUID          `gorm:"column:tool_id;type:uuid;not null;index:idx_tool_i18n_tool_id"`
	LanguageCode enums.LanguageCode `gorm:"column:language_code;type:language_code_enum;not null"`
	Name         string             `gorm:"column:name;not null"`
	Description  string             `gorm:"column:description;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (ToolI18n) TableName() string { return "tool_i18n" }

func (t *ToolI18n) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
