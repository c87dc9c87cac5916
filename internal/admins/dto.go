package admins

import (
	"time"

	"github.com/google/uuid"

	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// AdminDTO is the transport shape that omits the password hash.
type AdminDTO struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        enums.AdminRole `json:"role"`
	IsActive    bool            `json:"isActive"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateAdminDTO holds the data required by the repo to persist a new admin.
type CreateAdminDTO struct {
	Email        string
	Name         string
	PasswordHash string
	Role         enums.AdminRole
	IsActive     *bool
}

func FromModel(a *models.Admin) *AdminDTO {
	if a == nil {
		return nil
	}
	return &AdminDTO{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		IsActive:    a.IsActive,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (d CreateAdminDTO) ToModel() *models.Admin {
	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}
	role := d.Role
	if role == "" {
		role = enums.AdminRoleAdmin
	}
	return &models.Admin{
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Role:         role,
		IsActive:     active,
	}
}
