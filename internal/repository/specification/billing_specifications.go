package specification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type ActivePlans struct{}

func (s ActivePlans) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByGatewayCustomerID struct {
	CustomerID string
}

func (s ByGatewayCustomerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_customer_id = ?", s.CustomerID)
}

type ByGatewaySubscriptionID struct {
	SubscriptionID string
}

func (s ByGatewaySubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_subscription_id = ?", s.SubscriptionID)
}

type ByTransactionID struct {
	TransactionID string
}

func (s ByTransactionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_id = ?", s.TransactionID)
}

type BySubscriptionID struct {
	SubscriptionID uuid.UUID
}

func (s BySubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

// AwaitingSettlement selects pending payments that carry a simulated
// settlement schedule.
type AwaitingSettlement struct{}

func (s AwaitingSettlement) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND settle_after IS NOT NULL", "pending")
}

// PaymentDateBetween bounds payment_date; nil ends are open.
type PaymentDateBetween struct {
	From *time.Time
	To   *time.Time
}

func (s PaymentDateBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.From != nil {
		db = db.Where("payment_date >= ?", *s.From)
	}
	if s.To != nil {
		db = db.Where("payment_date <= ?", *s.To)
	}
	return db
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", strings.ToLower(s.Email))
}

// ByLogin matches either the email or the user name.
type ByLogin struct {
	Identifier string
}

func (s ByLogin) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ? OR user_name = ?", strings.ToLower(s.Identifier), s.Identifier)
}

type ByVerificationToken struct {
	Token string
}

func (s ByVerificationToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("verification_token = ?", s.Token)
}

// ByValidResetToken matches an unexpired password reset token.
type ByValidResetToken struct {
	Token string
	Now   time.Time
}

func (s ByValidResetToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("reset_password_token = ? AND reset_password_expire > ?", s.Token, s.Now)
}
