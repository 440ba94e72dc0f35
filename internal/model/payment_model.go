package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlanId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Plan           *Plan      `gorm:"foreignKey:PlanId"`
	SubscriptionId *uuid.UUID `gorm:"type:uuid;index"`
	Amount         int64      `gorm:"not null;check:amount >= 0"`
	Currency       string     `gorm:"type:varchar(3);not null;default:'USD'"`
	Gateway        string     `gorm:"type:varchar(32);not null"`
	Status         string     `gorm:"type:varchar(32);not null;default:'pending';index"`
	TransactionId  string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Purpose        string     `gorm:"type:varchar(32);not null;default:'subscription'"`
	PaymentDate    time.Time  `gorm:"not null;index"`
	PaidAt         *time.Time
	FailureReason  string     `gorm:"type:text"`
	SettleAfter    *time.Time `gorm:"index"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.Id)
	return nil
}
