package tool

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Sort keys accepted by the tool list.
const (
	SortByName      = "name"
	SortByToolCode  = "toolCode"
	SortByCategory  = "category"
	SortByIsActive  = "isActive"
	SortByTier      = "tier"
	SortByCreatedAt = "createdAt"
)

var sortColumns = map[string]string{
	SortByName:      "name",
	SortByToolCode:  "t.tool_code",
	SortByCategory:  "t.category",
	SortByIsActive:  "t.is_active",
	SortByTier:      "t.tier",
	SortByCreatedAt: "t.created_at",
}

// ListFilters describe the admin tool table.
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
	if _, ok := sortColumns[out.SortBy]; !ok {
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

// ListRow is one line of the tool table. Name and Description come from the
// requested locale, falling back to KR then EN.
type ListRow struct {
	ID                 uuid.UUID           `json:"id"`
	ToolCode           string              `json:"toolCode"`
	Category           *enums.ToolCategory `json:"category"`
	Name               *string             `json:"name"`
	Description        *string             `json:"description"`
	InternalUsageLimit *int                `json:"internalUsageLimit"`
	IsFree             bool                `json:"isFree"`
	Tier               *int                `json:"tier"`
	IconImageURL       *string             `json:"iconImageUrl"`
	IsActive           bool                `json:"isActive"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type listRecord struct {
	ID                 uuid.UUID
	ToolCode           string
	Category           *string
	Name               *string
	Description        *string
	InternalUsageLimit *int
	IsFree             bool
	Tier               *int
	IconImageURL       *string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (r listRecord) toRow() ListRow {
	row := ListRow{
		ID:                 r.ID,
		ToolCode:           r.ToolCode,
		Name:               r.Name,
		Description:        r.Description,
		InternalUsageLimit: r.InternalUsageLimit,
		IsFree:             r.IsFree,
		Tier:               r.Tier,
		IconImageURL:       r.IconImageURL,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.Category != nil {
		category := enums.ToolCategory(*r.Category)
		row.Category = &category
	}
	return row
}
