package admins

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// Sort keys accepted by the admin list.
const (
	SortByName        = "name"
	SortByEmail       = "email"
	SortByRole        = "role"
	SortByLastLoginAt = "lastLoginAt"
	SortByCreatedAt   = "createdAt"
)

var sortColumns = map[string]string{
	SortByName:        "name",
	SortByEmail:       "email",
	SortByRole:        "role",
	SortByLastLoginAt: "last_login_at",
	SortByCreatedAt:   "created_at",
}

// RecentActivityLimit caps the activity embedded in an admin detail.
const RecentActivityLimit = 20

// ListFilters describe the admin table. Status narrows by the active flag.
type ListFilters struct {
	Search    string
	Role      enums.AdminRole
	Status    enums.ProductStatusFilter
	SortBy    string
	SortOrder pagination.SortOrder
	Page      int
}

func (f ListFilters) normalized() ListFilters {
	out := f
	out.Search = strings.TrimSpace(f.Search)
	if !out.Role.IsValid() {
		out.Role = ""
	}
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
	return out
}

// ActivityFilters page the activity log, optionally for a single admin.
type ActivityFilters struct {
	AdminID *uuid.UUID
	Page    int
}

// AdminDetail is an admin with its most recent activity.
type AdminDetail struct {
	AdminDTO
	Activity []ActivityDTO `json:"activity"`
}

// ActivityDTO is one activity entry on an admin detail.
type ActivityDTO struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivityRow is one line of the global activity log, joined with the
// acting admin. Name and Email are empty when the admin no longer exists.
type ActivityRow struct {
	ActivityDTO
	AdminID    uuid.UUID `json:"adminId"`
	AdminName  string    `json:"adminName"`
	AdminEmail string    `json:"adminEmail"`
}

type activityRecord struct {
	ID         uuid.UUID
	AdminID    uuid.UUID
	Action     string
	Target     string
	IPAddress  *string
	CreatedAt  time.Time
	AdminName  *string
	AdminEmail *string
}

func (r activityRecord) toRow() ActivityRow {
	row := ActivityRow{
		ActivityDTO: ActivityDTO{
			ID:        r.ID,
			Action:    r.Action,
			Target:    r.Target,
			CreatedAt: r.CreatedAt,
		},
		AdminID:   r.AdminID,
		AdminName: "Unknown",
	}
	if r.IPAddress != nil {
		row.IPAddress = *r.IPAddress
	}
	if r.AdminName != nil {
		row.AdminName = *r.AdminName
	}
	if r.AdminEmail != nil {
		row.AdminEmail = *r.AdminEmail
	}
	return row
}
