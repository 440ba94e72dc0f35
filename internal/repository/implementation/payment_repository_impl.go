package implementation

import (
	"context"
	"errors"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/mapper"
	"podcast-be/internal/model"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) Transition(ctx context.Context, payment *entity.Payment, from entity.PaymentStatus) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", payment.Id, string(from)).
		Updates(map[string]interface{}{
			"status":          string(payment.Status),
			"failure_reason":  payment.FailureReason,
			"paid_at":         payment.PaidAt,
			"settle_after":    payment.SettleAfter,
			"subscription_id": payment.SubscriptionId,
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrStaleVersion
	}
	payment.UpdatedAt = now
	return nil
}

func (r *PaymentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	var m model.Payment
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	var models []*model.Payment
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	payments := make([]*entity.Payment, 0, len(models))
	for _, m := range models {
		payments = append(payments, r.mapper.ToEntity(m))
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Payment{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PaymentRepositoryImpl) Analytics(ctx context.Context, from, to *time.Time) (*entity.PaymentAnalytics, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Payment{})
		if from != nil {
			q = q.Where("payments.payment_date >= ?", *from)
		}
		if to != nil {
			q = q.Where("payments.payment_date <= ?", *to)
		}
		return q
	}

	result := &entity.PaymentAnalytics{From: from, To: to}

	if err := scoped().
		Where("payments.status = ?", string(entity.PaymentStatusCompleted)).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&result.TotalRevenue).Error; err != nil {
		return nil, err
	}

	var statusRows []struct {
		Status string
		Count  int64
		Total  int64
	}
	if err := scoped().
		Select("payments.status AS status, COUNT(*) AS count, COALESCE(SUM(payments.amount), 0) AS total").
		Group("payments.status").
		Order("payments.status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	result.ByStatus = make([]entity.PaymentStatusStat, 0, len(statusRows))
	for _, row := range statusRows {
		result.ByStatus = append(result.ByStatus, entity.PaymentStatusStat{
			Status: entity.PaymentStatus(row.Status),
			Count:  row.Count,
			Total:  row.Total,
		})
	}

	var planRows []struct {
		PlanId   uuid.UUID
		PlanName string
		Count    int64
		Revenue  int64
	}
	if err := scoped().
		Joins("JOIN plans ON plans.id = payments.plan_id").
		Where("payments.status = ?", string(entity.PaymentStatusCompleted)).
		Select("payments.plan_id AS plan_id, plans.name AS plan_name, COUNT(*) AS count, COALESCE(SUM(payments.amount), 0) AS revenue").
		Group("payments.plan_id, plans.name").
		Order("revenue DESC").
		Scan(&planRows).Error; err != nil {
		return nil, err
	}
	result.ByPlan = make([]entity.PlanRevenueStat, 0, len(planRows))
	for _, row := range planRows {
		result.ByPlan = append(result.ByPlan, entity.PlanRevenueStat{
			PlanId:   row.PlanId,
			PlanName: row.PlanName,
			Count:    row.Count,
			Revenue:  row.Revenue,
		})
	}

	return result, nil
}
