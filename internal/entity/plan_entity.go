package entity

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a pricing tier. Price is in minor currency units (cents).
type Plan struct {
	Id             uuid.UUID
	Name           string
	Description    string
	Price          int64
	Currency       string
	DurationDays   int
	Features       []string
	StorageQuotaMB int
	MaxPodcasts    *int
	IsActive       bool
	StripePriceId  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Plan) IsFree() bool {
	return p.Price == 0
}
