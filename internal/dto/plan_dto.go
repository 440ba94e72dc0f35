package dto

import (
	"time"

	"github.com/google/uuid"
)

type PlanResponse struct {
	Id             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          int64     `json:"price"`
	Currency       string    `json:"currency"`
	DurationDays   int       `json:"duration_days"`
	Features       []string  `json:"features"`
	StorageQuotaMB int       `json:"storage_quota_mb"`
	MaxPodcasts    *int      `json:"max_podcasts"`
	IsActive       bool      `json:"is_active"`
	StripePriceId  *string   `json:"stripe_price_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Price is in minor units (cents).
type CreatePlanRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=100"`
	Description    string   `json:"description" validate:"required,max=1000"`
	Price          *int64   `json:"price" validate:"required,min=0"`
	Currency       string   `json:"currency" validate:"omitempty,currency"`
	DurationDays   int      `json:"duration_days" validate:"required,min=1"`
	Features       []string `json:"features" validate:"omitempty,dive,required"`
	StorageQuotaMB int      `json:"storage_quota_mb" validate:"omitempty,min=0"`
	MaxPodcasts    *int     `json:"max_podcasts" validate:"omitempty,min=0"`
	IsActive       *bool    `json:"is_active"`
	StripePriceId  *string  `json:"stripe_price_id"`
}

type UpdatePlanRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description    *string  `json:"description" validate:"omitempty,max=1000"`
	Price          *int64   `json:"price" validate:"omitempty,min=0"`
	Currency       *string  `json:"currency" validate:"omitempty,currency"`
	DurationDays   *int     `json:"duration_days" validate:"omitempty,min=1"`
	Features       []string `json:"features" validate:"omitempty,dive,required"`
	StorageQuotaMB *int     `json:"storage_quota_mb" validate:"omitempty,min=0"`
	MaxPodcasts    *int     `json:"max_podcasts" validate:"omitempty,min=0"`
	IsActive       *bool    `json:"is_active"`
	StripePriceId  *string  `json:"stripe_price_id"`
}
