package specification

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type NotCancelled struct{}

func (s NotCancelled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_cancelled = ?", false)
}

type StartsAfter struct {
	Time time.Time
}

func (s StartsAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scheduled_start >= ?", s.Time)
}

// SessionSearch matches title or description, case-insensitively.
type SessionSearch struct {
	Query string
}

func (s SessionSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(s.Query) + "%"
	return db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
}
