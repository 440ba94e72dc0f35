package service

import (
	"context"
	"strings"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPlanService interface {
	// Public catalog, cheapest first.
	ListActive(ctx context.Context) ([]dto.PlanResponse, error)

	Get(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error)
	GetByName(ctx context.Context, name string) (*dto.PlanResponse, error)

	// Admin
	ListAll(ctx context.Context) ([]dto.PlanResponse, error)
	Create(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type planService struct {
	uowFactory      unitofwork.RepositoryFactory
	logger          logger.ILogger
	defaultCurrency string
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger, defaultCurrency string) IPlanService {
	return &planService{
		uowFactory:      uowFactory,
		logger:          logger,
		defaultCurrency: defaultCurrency,
	}
}

func (s *planService) ListActive(ctx context.Context) ([]dto.PlanResponse, error) {
	return s.list(ctx, specification.ActivePlans{}, specification.OrderBy{Field: "price"})
}

func (s *planService) ListAll(ctx context.Context) ([]dto.PlanResponse, error) {
	return s.list(ctx, specification.OrderBy{Field: "price"})
}

func (s *planService) list(ctx context.Context, specs ...specification.Specification) ([]dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.PlanRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	res := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, toPlanResponse(p))
	}
	return res, nil
}

func (s *planService) Get(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if plan == nil {
		return nil, apperror.NotFound("plan not found")
	}
	res := toPlanResponse(plan)
	return &res, nil
}

func (s *planService) GetByName(ctx context.Context, name string) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if plan == nil {
		return nil, apperror.NotFound("plan not found")
	}
	res := toPlanResponse(plan)
	return &res, nil
}

func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	features := req.Features
	if features == nil {
		features = []string{}
	}

	plan := &entity.Plan{
		Id:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          *req.Price,
		Currency:       currency,
		DurationDays:   req.DurationDays,
		Features:       features,
		StorageQuotaMB: req.StorageQuotaMB,
		MaxPodcasts:    req.MaxPodcasts,
		IsActive:       isActive,
		StripePriceId:  req.StripePriceId,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PlanRepository().Create(ctx, plan); err != nil {
		return nil, persistenceError(err, "a plan with this name already exists")
	}

	s.logger.Info(modulePlan, "Plan created", map[string]interface{}{
		"plan_id": plan.Id.String(),
		"name":    plan.Name,
		"price":   plan.Price,
	})
	res := toPlanResponse(plan)
	return &res, nil
}

func (s *planService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if plan == nil {
		return nil, apperror.NotFound("plan not found")
	}

	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Currency != nil {
		plan.Currency = strings.ToUpper(*req.Currency)
	}
	if req.DurationDays != nil {
		plan.DurationDays = *req.DurationDays
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.StorageQuotaMB != nil {
		plan.StorageQuotaMB = *req.StorageQuotaMB
	}
	if req.MaxPodcasts != nil {
		plan.MaxPodcasts = req.MaxPodcasts
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.StripePriceId != nil {
		plan.StripePriceId = req.StripePriceId
	}

	if err := uow.PlanRepository().Update(ctx, plan); err != nil {
		return nil, persistenceError(err, "a plan with this name already exists")
	}
	res := toPlanResponse(plan)
	return &res, nil
}

// Deactivate hides the plan from the catalog. Existing subscriptions keep
// referencing it.
func (s *planService) Deactivate(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Internal(err)
	}
	if plan == nil {
		return apperror.NotFound("plan not found")
	}
	if !plan.IsActive {
		return nil
	}
	plan.IsActive = false
	if err := uow.PlanRepository().Update(ctx, plan); err != nil {
		return apperror.Internal(err)
	}
	s.logger.Info(modulePlan, "Plan deactivated", map[string]interface{}{"plan_id": id.String()})
	return nil
}
