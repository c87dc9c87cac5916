package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminActivity records one mutating request made by an admin.
type AdminActivity struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AdminID   uuid.UUID `gorm:"column:admin_id;type:uuid;not null;index:idx_admin_activity_logs_admin_created"`
	Action    string    `gorm:"column:action;not null"`
	Target    string    `gorm:"column:target;not null"`
	IPAddress *string   `gorm:"column:ip_address"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdminActivity) TableName() string { return "admin_activity_logs" }

func (a *AdminActivity) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
