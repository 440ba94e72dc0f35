package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math"
	"strings"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/pkg/mailer"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = 10 * time.Minute

// passwordHashCost is a variable so tests can use bcrypt.MinCost.
var passwordHashCost = 12

type IUserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userId uuid.UUID) error
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	ForgetPassword(ctx context.Context, req *dto.ForgetPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) error
}

type userService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher events.Publisher
	logger         logger.ILogger
	jwtSecret      string
	tokenTTL       time.Duration
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	jwtSecret string,
	tokenTTL time.Duration,
) IUserService {
	return &userService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		logger:         logger,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
	}
}

// Register creates an unverified account, or refreshes one that was never
// verified, and mails a verification link.
func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := entity.UserRoleUser
	if req.Role != "" {
		role = entity.UserRole(req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	token, err := randomToken()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil && existing.Verified {
		return nil, apperror.Conflict("user already exists")
	}

	user := existing
	if user == nil {
		user = &entity.User{
			Id:             uuid.New(),
			Email:          email,
			StorageQuotaMB: 100,
		}
	}
	user.UserName = req.UserName
	user.Name = req.Name
	user.PasswordHash = string(hash)
	user.Role = role
	user.VerificationToken = &token

	if existing == nil {
		err = uow.UserRepository().Create(ctx, user)
	} else {
		err = uow.UserRepository().Update(ctx, user)
	}
	if err != nil {
		return nil, persistenceError(err, "user name is already taken")
	}

	go func() {
		if mailErr := s.emailService.SendVerification(user.Email, user.Name, token); mailErr != nil {
			s.logger.Error(moduleAuth, "Failed to send verification email", map[string]interface{}{
				"user_id": user.Id.String(),
				"error":   mailErr.Error(),
			})
		}
	}()

	s.logger.Info(moduleAuth, "User registered", map[string]interface{}{
		"user_id":   user.Id.String(),
		"returning": existing != nil,
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.UserRegistered, map[string]interface{}{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"role":    string(user.Role),
	})

	return &dto.RegisterResponse{
		User:  toUserResponse(user, storedSubscriptionView(user)),
		Token: token,
	}, nil
}

func (s *userService) Verify(ctx context.Context, token string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByVerificationToken{Token: token})
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return apperror.NotFound("invalid token")
	}
	user.Verified = true
	user.VerificationToken = nil
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	s.logger.Info(moduleAuth, "Email verified", map[string]interface{}{"user_id": user.Id.String()})
	return nil
}

// Login accepts the email or the user name.
func (s *userService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := req.Email
	if identifier == "" {
		identifier = req.UserName
	}
	if identifier == "" {
		return nil, apperror.ValidationFields("validation failed", map[string]string{
			"email": "email or user_name is required",
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByLogin{Identifier: identifier})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn(moduleAuth, "Invalid password", map[string]interface{}{"user_id": user.Id.String()})
		return nil, apperror.Unauthorized("invalid credentials")
	}

	now := time.Now()
	token, err := serverutils.GenerateToken(s.jwtSecret, user.Id, string(user.Role), s.tokenTTL)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	user.LastLogin = &now
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	view, err := s.subscriptionView(ctx, uow, user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.tokenTTL),
		User:      toUserResponse(user, view),
	}, nil
}

func (s *userService) Logout(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return nil
	}
	now := time.Now()
	user.LastLogout = &now
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	view, err := s.subscriptionView(ctx, uow, user)
	if err != nil {
		return nil, err
	}
	res := toUserResponse(user, view)
	return &res, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, persistenceError(err, "email is already in use")
	}
	view, err := s.subscriptionView(ctx, uow, user)
	if err != nil {
		return nil, err
	}
	res := toUserResponse(user, view)
	return &res, nil
}

func (s *userService) ForgetPassword(ctx context.Context, req *dto.ForgetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return apperror.NotFound("user not found")
	}

	token, err := randomToken()
	if err != nil {
		return apperror.Internal(err)
	}
	expires := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpire = &expires
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}

	go func() {
		if mailErr := s.emailService.SendResetToken(user.Email, token); mailErr != nil {
			s.logger.Error(moduleAuth, "Failed to send reset email", map[string]interface{}{
				"user_id": user.Id.String(),
				"error":   mailErr.Error(),
			})
		}
	}()
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return apperror.ValidationFields("validation failed", map[string]string{
			"confirm_password": "passwords do not match",
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByValidResetToken{Token: token, Now: time.Now()})
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return apperror.Validation("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return apperror.Internal(err)
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	s.logger.Info(moduleAuth, "Password reset", map[string]interface{}{"user_id": user.Id.String()})
	return nil
}

func (s *userService) findUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}

// subscriptionView reads through to the subscription row and falls back to
// the summary cached on the user.
func (s *userService) subscriptionView(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (dto.SubscriptionView, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: user.Id})
	if err != nil {
		return dto.SubscriptionView{}, apperror.Internal(err)
	}
	if sub == nil {
		return storedSubscriptionView(user), nil
	}

	end := sub.EndDate
	view := dto.SubscriptionView{
		Type:          entity.SubscriptionTypeFree,
		Status:        string(sub.Status),
		EndDate:       &end,
		DaysRemaining: daysUntil(end, time.Now()),
	}
	if sub.Plan != nil {
		view.PlanName = sub.Plan.Name
		view.PlanPrice = sub.Plan.Price
		view.Features = sub.Plan.Features
		if !sub.Plan.IsFree() {
			view.Type = entity.SubscriptionTypePremium
		}
	}
	return view, nil
}

func storedSubscriptionView(user *entity.User) dto.SubscriptionView {
	view := dto.SubscriptionView{
		Type:    user.SubscriptionType,
		Status:  user.SubscriptionStatus,
		EndDate: user.SubscriptionEndDate,
	}
	if view.Type == "" {
		view.Type = entity.SubscriptionTypeFree
	}
	if user.SubscriptionEndDate != nil {
		view.DaysRemaining = daysUntil(*user.SubscriptionEndDate, time.Now())
	}
	return view
}

func daysUntil(end, now time.Time) int64 {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(remaining) / float64(24*time.Hour)))
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
