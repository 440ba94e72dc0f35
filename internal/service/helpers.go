package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/contract"
	"podcast-be/pkg/events"
)

const (
	moduleSubscription = "SUBSCRIPTION"
	modulePayment      = "PAYMENT"
	moduleWebhook      = "WEBHOOK"
	moduleSettlement   = "SETTLEMENT"
	moduleAuth         = "AUTH"
	moduleSession      = "SESSION"
	modulePlan         = "PLAN"
	moduleGateway      = "GATEWAY"
)

const staleWriteMessage = "subscription was modified concurrently, please retry"

func publishEvent(ctx context.Context, publisher events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

// persistenceError maps repository sentinels onto the HTTP taxonomy.
func persistenceError(err error, duplicateMessage string) error {
	switch {
	case errors.Is(err, contract.ErrDuplicate):
		return apperror.Conflict(duplicateMessage)
	case errors.Is(err, contract.ErrStaleVersion):
		return apperror.Conflict(staleWriteMessage)
	default:
		return apperror.Internal(err)
	}
}

func transitionError(err error) error {
	if errors.Is(err, entity.ErrInvalidTransition) {
		return apperror.Validation(err.Error())
	}
	return apperror.Internal(err)
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randReader feeds transaction id suffixes.
var randReader io.Reader = rand.Reader

// generateTransactionId returns "<prefix>_<unix ms>_<9 base36 chars>".
func generateTransactionId(prefix string, now time.Time) (string, error) {
	suffix := make([]byte, 9)
	radix := big.NewInt(int64(len(base36Alphabet)))
	for i := range suffix {
		n, err := rand.Int(randReader, radix)
		if err != nil {
			return "", fmt.Errorf("generate transaction id: %w", err)
		}
		suffix[i] = base36Alphabet[n.Int64()]
	}
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix), nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func toPlanResponse(p *entity.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		Id:             p.Id,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Currency:       p.Currency,
		DurationDays:   p.DurationDays,
		Features:       p.Features,
		StorageQuotaMB: p.StorageQuotaMB,
		MaxPodcasts:    p.MaxPodcasts,
		IsActive:       p.IsActive,
		StripePriceId:  p.StripePriceId,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toSubscriptionResponse(s *entity.Subscription) dto.SubscriptionResponse {
	res := dto.SubscriptionResponse{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Status:                string(s.Status),
		StartDate:             s.StartDate,
		EndDate:               s.EndDate,
		IsActive:              s.IsActive,
		AutoRenew:             s.AutoRenew,
		Amount:                s.Amount,
		ExpiryMessage:         s.ExpiryMessage,
		PaymentId:             s.PaymentId,
		GatewaySubscriptionId: s.GatewaySubscriptionId,
		GatewayCustomerId:     s.GatewayCustomerId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	if s.Plan != nil {
		plan := toPlanResponse(s.Plan)
		res.Plan = &plan
	}
	return res
}

func toPaymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		Id:             p.Id,
		UserId:         p.UserId,
		PlanId:         p.PlanId,
		SubscriptionId: p.SubscriptionId,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Gateway:        string(p.Gateway),
		Status:         string(p.Status),
		TransactionId:  p.TransactionId,
		Purpose:        string(p.Purpose),
		PaymentDate:    p.PaymentDate,
		PaidAt:         p.PaidAt,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt,
	}
}

func toUserResponse(u *entity.User, view dto.SubscriptionView) dto.UserResponse {
	return dto.UserResponse{
		Id:             u.Id,
		UserName:       u.UserName,
		Name:           u.Name,
		Email:          u.Email,
		Avatar:         u.Avatar,
		Role:           string(u.Role),
		Bio:            u.Bio,
		Location:       u.Location,
		StorageQuotaMB: u.StorageQuotaMB,
		StorageUsedMB:  u.StorageUsedMB,
		Verified:       u.Verified,
		LastLogin:      u.LastLogin,
		Subscription:   view,
		CreatedAt:      u.CreatedAt,
	}
}

func toSessionResponse(s *entity.LiveSession) dto.SessionResponse {
	participants := make([]dto.ParticipantResponse, 0, len(s.Participants))
	for _, p := range s.Participants {
		participants = append(participants, dto.ParticipantResponse{
			UserId:   p.UserId,
			Role:     p.Role,
			JoinedAt: p.JoinedAt,
		})
	}
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.SessionResponse{
		Id:                   s.Id,
		HostId:               s.HostId,
		Title:                s.Title,
		Description:          s.Description,
		ScheduledStart:       s.ScheduledStart,
		ScheduledEnd:         s.ScheduledEnd,
		IsLive:               s.IsLive,
		IsRecorded:           s.IsRecorded,
		IsCancelled:          s.IsCancelled,
		StreamPlatform:       s.StreamPlatform,
		StreamURL:            s.StreamURL,
		ThumbnailURL:         s.ThumbnailURL,
		RecordingURL:         s.RecordingURL,
		DurationMinutes:      s.DurationMinutes,
		MaxParticipants:      s.MaxParticipants,
		Category:             s.Category,
		Tags:                 tags,
		AccessLevel:          s.AccessLevel,
		RequiresRegistration: s.RequiresRegistration,
		RegistrationCount:    s.RegistrationCount,
		ActualStartTime:      s.ActualStartTime,
		ActualEndTime:        s.ActualEndTime,
		ViewerCount:          s.ViewerCount,
		ChatEnabled:          s.ChatEnabled,
		RecordingEnabled:     s.RecordingEnabled,
		MonetizationEnabled:  s.MonetizationEnabled,
		Settings: dto.SessionSettings{
			AllowQuestions:   s.Settings.AllowQuestions,
			AllowScreenShare: s.Settings.AllowScreenShare,
			AutoRecord:       s.Settings.AutoRecord,
		},
		Participants: participants,
		CreatedAt:    s.CreatedAt,
	}
}
