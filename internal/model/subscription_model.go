package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription holds at most one row per user (unique user_id). Version is
// the optimistic concurrency token checked by every update.
type Subscription struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PlanId                uuid.UUID `gorm:"type:uuid;not null;index"`
	Plan                  *Plan     `gorm:"foreignKey:PlanId"`
	Status                string    `gorm:"type:varchar(32);not null;index"`
	StartDate             time.Time `gorm:"not null"`
	EndDate               time.Time `gorm:"not null"`
	IsActive              bool      `gorm:"not null;default:false"`
	AutoRenew             bool      `gorm:"not null"`
	Amount                int64     `gorm:"not null;default:0"`
	ExpiryMessage         string    `gorm:"type:text"`
	PaymentId             *string   `gorm:"type:varchar(255)"`
	GatewaySubscriptionId *string   `gorm:"type:varchar(255);index"`
	GatewayCustomerId     *string   `gorm:"type:varchar(255);index"`
	Version               int64     `gorm:"not null;default:1"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.Id)
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
