package dto

import (
	"time"

	"github.com/google/uuid"
)

type PageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, page, limit int) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return PageResponse[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type LogListResponse struct {
	Id        string `json:"id"`
	Level     string `json:"level"`
	Module    string `json:"module"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}

type RecentPayment struct {
	TransactionId string    `json:"transaction_id"`
	UserId        uuid.UUID `json:"user_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	Purpose       string    `json:"purpose"`
	PaymentDate   time.Time `json:"payment_date"`
}

type AdminDashboardStats struct {
	TotalUsers          int64           `json:"total_users"`
	VerifiedUsers       int64           `json:"verified_users"`
	ActiveSubscriptions int64           `json:"active_subscriptions"`
	PendingPayments     int64           `json:"pending_payments"`
	TotalRevenue        int64           `json:"total_revenue"`
	UpcomingSessions    int64           `json:"upcoming_sessions"`
	RecentPayments      []RecentPayment `json:"recent_payments"`
}
