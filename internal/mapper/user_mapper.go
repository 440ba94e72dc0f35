package mapper

import (
	"podcast-be/internal/entity"
	"podcast-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                  u.Id,
		UserName:            u.UserName,
		Name:                u.Name,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		Avatar:              u.Avatar,
		Role:                entity.UserRole(u.Role),
		Bio:                 u.Bio,
		Location:            u.Location,
		StorageQuotaMB:      u.StorageQuotaMB,
		StorageUsedMB:       u.StorageUsedMB,
		Verified:            u.Verified,
		VerificationToken:   u.VerificationToken,
		ResetPasswordToken:  u.ResetPasswordToken,
		ResetPasswordExpire: u.ResetPasswordExpire,
		StripeCustomerId:    u.StripeCustomerId,
		LastLogin:           u.LastLogin,
		LastLogout:          u.LastLogout,
		SubscriptionType:    u.SubscriptionType,
		SubscriptionStatus:  u.SubscriptionStatus,
		SubscriptionEndDate: u.SubscriptionEndDate,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                  u.Id,
		UserName:            u.UserName,
		Name:                u.Name,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		Avatar:              u.Avatar,
		Role:                string(u.Role),
		Bio:                 u.Bio,
		Location:            u.Location,
		StorageQuotaMB:      u.StorageQuotaMB,
		StorageUsedMB:       u.StorageUsedMB,
		Verified:            u.Verified,
		VerificationToken:   u.VerificationToken,
		ResetPasswordToken:  u.ResetPasswordToken,
		ResetPasswordExpire: u.ResetPasswordExpire,
		StripeCustomerId:    u.StripeCustomerId,
		LastLogin:           u.LastLogin,
		LastLogout:          u.LastLogout,
		SubscriptionType:    u.SubscriptionType,
		SubscriptionStatus:  u.SubscriptionStatus,
		SubscriptionEndDate: u.SubscriptionEndDate,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
