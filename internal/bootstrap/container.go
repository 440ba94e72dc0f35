package bootstrap

import (
	"context"
	"log"

	"podcast-be/internal/config"
	"podcast-be/internal/controller"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/pkg/mailer"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/internal/service"
	"podcast-be/pkg/events"
	"podcast-be/pkg/gateway"
	"podcast-be/pkg/idempotency"
	pktNats "podcast-be/pkg/nats"
	"podcast-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UserController         controller.IUserController
	PlanController         controller.IPlanController
	SubscriptionController controller.ISubscriptionController
	PaymentController      controller.IPaymentController
	WebhookController      controller.IWebhookController
	SessionController      controller.ISessionController
	AdminController        controller.IAdminController

	// Background services, run by main.go
	SettlementService   service.ISettlementService
	SubscriptionService service.ISubscriptionService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	webhookLogger := logger.NewIsolatedLogger(cfg.App.WebhookLogFilePath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.BaseURL,
		cfg.App.ClientURL,
	)

	// 2. Settlement bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	sched := scheduler.New()

	// 3. Infrastructure. Both are optional: events are dropped without
	// NATS and idempotency keys stay in memory without Redis.
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	idempotencyStore := idempotency.NewFallbackStore(rdb, cfg.Billing.IdempotencyWindow)

	stripeClient := gateway.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	// 4. Services
	settlementService := service.NewSettlementService(
		pubSub,
		sched,
		uowFactory,
		sysLogger,
		cfg.Billing.SettlementDelay,
		cfg.Billing.SimulateFailure,
	)
	subscriptionService := service.NewSubscriptionService(
		uowFactory,
		settlementService,
		stripeClient,
		eventPublisher,
		sysLogger,
		service.SubscriptionOptions{
			FreePlanName:    cfg.Billing.FreePlanName,
			FreeTrialDays:   cfg.Billing.FreeTrialDays,
			SettlementDelay: cfg.Billing.SettlementDelay,
			SuccessURL:      cfg.Stripe.SuccessURL,
			CancelURL:       cfg.Stripe.CancelURL,
		},
	)
	paymentService := service.NewPaymentService(uowFactory, settlementService, eventPublisher, sysLogger)
	webhookService := service.NewWebhookService(
		stripeClient,
		subscriptionService,
		idempotencyStore,
		cfg.Billing.IdempotencyWindow,
		sysLogger,
		webhookLogger,
	)
	planService := service.NewPlanService(uowFactory, sysLogger, cfg.Billing.DefaultCurrency)
	userService := service.NewUserService(uowFactory, emailService, eventPublisher, sysLogger, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)
	sessionService := service.NewSessionService(uowFactory, sysLogger)
	adminService := service.NewAdminService(uowFactory, sysLogger, webhookLogger)

	// 5. Controllers
	return &Container{
		UserController:         controller.NewUserController(userService, cfg.IsProduction()),
		PlanController:         controller.NewPlanController(planService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		PaymentController:      controller.NewPaymentController(paymentService, subscriptionService),
		WebhookController:      controller.NewWebhookController(webhookService),
		SessionController:      controller.NewSessionController(sessionService),
		AdminController:        controller.NewAdminController(adminService),

		SettlementService:   settlementService,
		SubscriptionService: subscriptionService,
		Logger:              sysLogger,

		closers: []func(){
			settlementService.Stop,
			func() { _ = pubSub.Close() },
			func() {
				if natsPub != nil {
					natsPub.Close()
				}
			},
			func() { _ = rdb.Close() },
			func() {
				_ = webhookLogger.Sync()
				_ = sysLogger.Sync()
			},
		},
	}
}

// Close releases background resources in dependency order.
func (c *Container) Close() {
	for _, closeFn := range c.closers {
		closeFn()
	}
}
