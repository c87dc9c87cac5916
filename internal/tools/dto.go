package tool

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/types"
)

// CreateInput is the tool form submitted on create.
type CreateInput struct {
	Category           *enums.ToolCategory `json:"category" validate:"omitnil,oneof=SEARCH GENERATION OPERATION DOCUMENTS UTILITY KNOWLEDGE_BASE AMUSEMENT"`
	ToolCode           string              `json:"toolCode" validate:"required,max=100"`
	InternalUsageLimit *int                `json:"internalUsageLimit" validate:"omitnil,gt=0"`
	IsFree             bool                `json:"isFree"`
	Tier               *int                `json:"tier" validate:"omitnil,min=0,max=5"`
	IconImageURL       *string             `json:"iconImageUrl" validate:"omitnil,urlorempty"`
	IsActive           *bool               `json:"isActive"`
	I18n               []I18nInput         `json:"i18n" validate:"min=1,dive"`
}

// I18nInput is one localized name and description.
type I18nInput struct {
	LanguageCode enums.LanguageCode `json:"languageCode" validate:"required,oneof=KR EN JP"`
	Name         string             `json:"name" validate:"required"`
	Description  string             `json:"description"`
}

// UpdateInput is a partial update. Absent fields are left untouched;
// nullable columns are cleared by an explicit null. A non-empty I18n
// replaces every localized row.
type UpdateInput struct {
	Category           types.Optional[enums.ToolCategory] `json:"category"`
	ToolCode           *string                            `json:"toolCode"`
	InternalUsageLimit types.Optional[int]                `json:"internalUsageLimit"`
	IsFree             *bool                              `json:"isFree"`
	Tier               types.Optional[int]                `json:"tier"`
	IconImageURL       types.Optional[string]             `json:"iconImageUrl"`
	IsActive           *bool                              `json:"isActive"`
	I18n               []I18nInput                        `json:"i18n"`
}

// updateCheck mirrors the set fields of an UpdateInput for validation.
type updateCheck struct {
	Category           *enums.ToolCategory `json:"category" validate:"omitnil,oneof=SEARCH GENERATION OPERATION DOCUMENTS UTILITY KNOWLEDGE_BASE AMUSEMENT"`
	ToolCode           *string             `json:"toolCode" validate:"omitnil,min=1,max=100"`
	InternalUsageLimit *int                `json:"internalUsageLimit" validate:"omitnil,gt=0"`
	Tier               *int                `json:"tier" validate:"omitnil,min=0,max=5"`
	IconImageURL       *string             `json:"iconImageUrl" validate:"omitnil,urlorempty"`
	I18n               []I18nInput         `json:"i18n" validate:"dive"`
}

func (in *CreateInput) normalize() {
	in.ToolCode = strings.TrimSpace(in.ToolCode)
	in.IconImageURL = trimmedOrNil(in.IconImageURL)
	normalizeI18n(in.I18n)
}

func (in *UpdateInput) normalize() {
	if in.ToolCode != nil {
		trimmed := strings.TrimSpace(*in.ToolCode)
		in.ToolCode = &trimmed
	}
	if in.IconImageURL.Set {
		in.IconImageURL.Value = trimmedOrNil(in.IconImageURL.Value)
	}
	normalizeI18n(in.I18n)
}

func (in UpdateInput) check() updateCheck {
	return updateCheck{
		Category:           in.Category.Value,
		ToolCode:           in.ToolCode,
		InternalUsageLimit: in.InternalUsageLimit.Value,
		Tier:               in.Tier.Value,
		IconImageURL:       in.IconImageURL.Value,
		I18n:               in.I18n,
	}
}

// changes renders the set fields as a column map for gorm Updates.
func (in UpdateInput) changes(now time.Time) map[string]any {
	out := map[string]any{"updated_at": now}
	if in.Category.Set {
		out["category"] = in.Category.Value
	}
	if in.ToolCode != nil {
		out["tool_code"] = *in.ToolCode
	}
	if in.InternalUsageLimit.Set {
		out["internal_usage_limit"] = in.InternalUsageLimit.Value
	}
	if in.IsFree != nil {
		out["is_free"] = *in.IsFree
	}
	if in.Tier.Set {
		out["tier"] = in.Tier.Value
	}
	if in.IconImageURL.Set {
		out["icon_image_url"] = in.IconImageURL.Value
	}
	if in.IsActive != nil {
		out["is_active"] = *in.IsActive
	}
	return out
}

func normalizeI18n(rows []I18nInput) {
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		rows[i].Description = strings.TrimSpace(rows[i].Description)
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

func i18nRows(toolID uuid.UUID, in []I18nInput) []models.ToolI18n {
	rows := make([]models.ToolI18n, 0, len(in))
	for _, v := range in {
		rows = append(rows, models.ToolI18n{
			ToolID:       toolID,
			LanguageCode: v.LanguageCode,
			Name:         v.Name,
			Description:  v.Description,
		})
	}
	return rows
}

// ToolDTO is the detail view with every localized row.
type ToolDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Category           *enums.ToolCategory `json:"category"`
	ToolCode           string              `json:"toolCode"`
	InternalUsageLimit *int                `json:"internalUsageLimit"`
	IsFree             bool                `json:"isFree"`
	Tier               *int                `json:"tier"`
	IconImageURL       *string             `json:"iconImageUrl"`
	IsActive           bool                `json:"isActive"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	I18n               []I18nDTO           `json:"i18n"`
}

// I18nDTO is one localized row.
type I18nDTO struct {
	ID           uuid.UUID          `json:"id"`
	LanguageCode enums.LanguageCode `json:"languageCode"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
}

func newToolDTO(tool *models.Tool, rows []models.ToolI18n) *ToolDTO {
	dto := &ToolDTO{
		ID:                 tool.ID,
		Category:           tool.Category,
		ToolCode:           tool.ToolCode,
		InternalUsageLimit: tool.InternalUsageLimit,
		IsFree:             tool.IsFree,
		Tier:               tool.Tier,
		IconImageURL:       tool.IconImageURL,
		IsActive:           tool.IsActive,
		CreatedAt:          tool.CreatedAt,
		UpdatedAt:          tool.UpdatedAt,
		I18n:               make([]I18nDTO, 0, len(rows)),
	}
	for _, row := range rows {
		dto.I18n = append(dto.I18n, I18nDTO{
			ID:           row.ID,
			LanguageCode: row.LanguageCode,
			Name:         row.Name,
			Description:  row.Description,
		})
	}
	return dto
}
