package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserName            string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Name                string    `gorm:"type:varchar(255);not null"`
	Email               string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash        string    `gorm:"type:varchar(255);not null"`
	Avatar              *string   `gorm:"type:text"`
	Role                string    `gorm:"type:varchar(20);not null;default:'user'"`
	Bio                 string    `gorm:"type:varchar(500)"`
	Location            string    `gorm:"type:varchar(100)"`
	StorageQuotaMB      int       `gorm:"not null;default:100"`
	StorageUsedMB       int       `gorm:"not null;default:0"`
	Verified            bool      `gorm:"not null;default:false"`
	VerificationToken   *string   `gorm:"type:varchar(255);index"`
	ResetPasswordToken  *string   `gorm:"type:varchar(255);index"`
	ResetPasswordExpire *time.Time
	StripeCustomerId    *string `gorm:"type:varchar(255);index"`
	LastLogin           *time.Time
	LastLogout          *time.Time
	SubscriptionType    string `gorm:"type:varchar(20);not null;default:'free'"`
	SubscriptionStatus  string `gorm:"type:varchar(32)"`
	SubscriptionEndDate *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.Id)
	return nil
}
