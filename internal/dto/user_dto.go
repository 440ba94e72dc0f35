package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	UserName string `json:"user_name" validate:"required,min=3,max=50,alphanum"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user host"`
}

// LoginRequest accepts either the email or the user name.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	UserName string `json:"user_name" validate:"omitempty"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}

// SubscriptionView summarizes the current subscription on the user
// profile.
type SubscriptionView struct {
	Type          string     `json:"type"`
	Status        string     `json:"status,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	PlanName      string     `json:"plan_name,omitempty"`
	PlanPrice     int64      `json:"plan_price"`
	Features      []string   `json:"features,omitempty"`
	DaysRemaining int64      `json:"days_remaining"`
}

type UserResponse struct {
	Id             uuid.UUID        `json:"id"`
	UserName       string           `json:"user_name"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Avatar         *string          `json:"avatar,omitempty"`
	Role           string           `json:"role"`
	Bio            string           `json:"bio,omitempty"`
	Location       string           `json:"location,omitempty"`
	StorageQuotaMB int              `json:"storage_quota_mb"`
	StorageUsedMB  int              `json:"storage_used_mb"`
	Verified       bool             `json:"verified"`
	LastLogin      *time.Time       `json:"last_login,omitempty"`
	Subscription   SubscriptionView `json:"subscription"`
	CreatedAt      time.Time        `json:"created_at"`
}

type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
