package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Plan struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Name           string                      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description    string                      `gorm:"type:text;not null"`
	Price          int64                       `gorm:"not null;check:price >= 0"`
	Currency       string                      `gorm:"type:varchar(3);not null;default:'USD'"`
	DurationDays   int                         `gorm:"not null;check:duration_days >= 1"`
	Features       datatypes.JSONSlice[string] `gorm:"not null"`
	StorageQuotaMB int                         `gorm:"not null;default:100"`
	MaxPodcasts    *int
	IsActive       bool      `gorm:"not null;index"`
	StripePriceId  *string   `gorm:"type:varchar(255)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.Id)
	return nil
}
