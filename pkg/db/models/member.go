package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a consumer app member. The admin service only reads members; the
// BeforeCreate hooks exist for fixtures.
type User struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name             string     `gorm:"column:name;not null"`
	Email            *string    `gorm:"column:email"`
	ProfileImageURL  *string    `gorm:"column:profile_image_url"`
	LanguageCode     *string    `gorm:"column:language_code"`
	Status           *string    `gorm:"column:status"`
	OnboardingStatus *string    `gorm:"column:onboarding_status"`
	CreatedAt        *time.Time `gorm:"column:created_at"`
	UpdatedAt        *time.Time `gorm:"column:updated_at"`
	DeletedAt        *time.Time `gorm:"column:deleted_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UserAccount links a member to a sign-in provider.
type UserAccount struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_accounts_user_id"`
	AccountID  string     `gorm:"column:account_id;not null"`
	ProviderID string     `gorm:"column:provider_id;not null"`
	CreatedAt  *time.Time `gorm:"column:created_at"`
}

func (UserAccount) TableName() string { return "accounts" }

func (a *UserAccount) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// UserSession is a member sign-in session.
type UserSession struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_sessions_user_id"`
	Token     string     `gorm:"column:token;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	IPAddress *string    `gorm:"column:ip_address"`
	UserAgent *string    `gorm:"column:user_agent"`
	CreatedAt *time.Time `gorm:"column:created_at"`
}

func (UserSession) TableName() string { return "sessions" }

func (s *UserSession) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// UserPurchase is a member's license to a catalog product.
type UserPurchase struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID             *uuid.UUID `gorm:"column:user_id;type:uuid;index:idx_purchase_user_id"`
	ProductID          *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Status             *string    `gorm:"column:status"`
	CurrentPeriodStart *time.Time `gorm:"column:current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end"`
	CreatedAt          *time.Time `gorm:"column:created_at"`
}

func (UserPurchase) TableName() string { return "user_purchases" }

func (p *UserPurchase) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PaymentTransaction is a provider payment event stored for a member.
type PaymentTransaction struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid;index:idx_transactions_user_id"`
	Amount       *int       `gorm:"column:amount"`
	CurrencyCode *string    `gorm:"column:currency_code"`
	Status       *string    `gorm:"column:status"`
	PaidAt       *time.Time `gorm:"column:paid_at"`
	CreatedAt    *time.Time `gorm:"column:created_at"`
}

func (PaymentTransaction) TableName() string { return "payment_transactions" }

func (p *PaymentTransaction) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
