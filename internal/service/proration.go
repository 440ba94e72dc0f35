package service

import (
	"math"
	"time"

	"podcast-be/internal/entity"
)

// billingMonthDays is the fixed month length used to value unused time.
const billingMonthDays = 30

type Proration struct {
	RemainingDays int64
	Refund        int64
	FinalAmount   int64
}

// ComputeProration credits the unused part of the current plan against the
// price of the next one. Remaining days are rounded up and never negative;
// the final amount is never negative either.
func ComputeProration(currentPlan *entity.Plan, currentEnd time.Time, newPlan *entity.Plan, now time.Time) Proration {
	var p Proration
	if currentPlan != nil {
		remaining := currentEnd.Sub(now)
		if remaining > 0 {
			p.RemainingDays = int64(math.Ceil(float64(remaining) / float64(24*time.Hour)))
		}
		p.Refund = int64(math.Round(float64(currentPlan.Price) * float64(p.RemainingDays) / billingMonthDays))
	}
	p.FinalAmount = newPlan.Price - p.Refund
	if p.FinalAmount < 0 {
		p.FinalAmount = 0
	}
	return p
}
