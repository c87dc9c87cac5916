package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/enums"
)

// Admin is a dashboard operator account.
type Admin struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex:ux_admins_email"`
	Name         string          `gorm:"column:name;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.AdminRole `gorm:"column:role;type:admin_role_enum;not null"`
	IsActive     bool            `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Admin) TableName() string { return "admins" }

func (a *Admin) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
