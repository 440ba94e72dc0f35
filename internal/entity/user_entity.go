package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleHost  UserRole = "host"
	UserRoleAdmin UserRole = "admin"

	SubscriptionTypeFree    = "free"
	SubscriptionTypePremium = "premium"
)

type User struct {
	Id                  uuid.UUID
	UserName            string
	Name                string
	Email               string
	PasswordHash        string
	Avatar              *string
	Role                UserRole
	Bio                 string
	Location            string
	StorageQuotaMB      int
	StorageUsedMB       int
	Verified            bool
	VerificationToken   *string
	ResetPasswordToken  *string
	ResetPasswordExpire *time.Time
	StripeCustomerId    *string
	LastLogin           *time.Time
	LastLogout          *time.Time

	// Denormalized copy of the user's Subscription, refreshed on every
	// lifecycle transition. Subscription is the source of truth.
	SubscriptionType    string
	SubscriptionStatus  string
	SubscriptionEndDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) ApplySubscription(sub *Subscription, plan *Plan) {
	u.SubscriptionType = SubscriptionTypeFree
	if plan != nil && !plan.IsFree() {
		u.SubscriptionType = SubscriptionTypePremium
	}
	if plan != nil {
		u.StorageQuotaMB = plan.StorageQuotaMB
	}
	u.SubscriptionStatus = string(sub.Status)
	end := sub.EndDate
	u.SubscriptionEndDate = &end
}
