package controller

import (
	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type paymentController struct {
	paymentService      service.IPaymentService
	subscriptionService service.ISubscriptionService
}

func NewPaymentController(paymentService service.IPaymentService, subscriptionService service.ISubscriptionService) IPaymentController {
	return &paymentController{
		paymentService:      paymentService,
		subscriptionService: subscriptionService,
	}
}

func (c *paymentController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	payments := api.Group("/payments", jwtMiddleware)
	payments.Post("/create", c.Create)
	payments.Post("/process-subscription", c.ProcessSubscription)
	payments.Post("/checkout-session", c.CreateCheckoutSession)
	payments.Get("/status/:transactionId", c.GetStatus)
	payments.Get("/history", c.History)

	adminOnly := serverutils.RequireRoles("admin")
	payments.Get("/all", adminOnly, c.ListAll)
	payments.Get("/analytics", adminOnly, c.Analytics)
	payments.Post("/:transactionId/refund", adminOnly, c.Refund)
	payments.Post("/:transactionId/cancel", adminOnly, c.Cancel)
}

// Create records a ledger entry. Users may only record pending payments
// for themselves.
func (c *paymentController) Create(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	var req dto.CreatePaymentRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	payment, err := c.paymentService.Record(ctx.UserContext(), caller.UserId, caller.IsAdmin(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payment recorded", payment))
}

func (c *paymentController) ProcessSubscription(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	var req dto.ProcessSubscriptionRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.subscriptionService.ProcessSubscription(ctx.UserContext(), caller.UserId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment processing", res))
}

func (c *paymentController) CreateCheckoutSession(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	var req dto.CheckoutSessionRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.subscriptionService.CreateCheckoutSession(ctx.UserContext(), caller.UserId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout session created", res))
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	payment, err := c.paymentService.FindByTransactionId(ctx.UserContext(), caller.UserId, caller.IsAdmin(), ctx.Params("transactionId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment status retrieved", payment))
}

func (c *paymentController) History(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	history, err := c.paymentService.HistoryForUser(ctx.UserContext(), caller.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment history retrieved", history))
}

func (c *paymentController) ListAll(ctx *fiber.Ctx) error {
	page, err := c.paymentService.ListAll(ctx.UserContext(), ctx.Query("status"), queryInt(ctx, "page", 1), queryInt(ctx, "limit", 10))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payments retrieved", page))
}

func (c *paymentController) Analytics(ctx *fiber.Ctx) error {
	from, err := queryTime(ctx, "from")
	if err != nil {
		return err
	}
	to, err := queryTime(ctx, "to")
	if err != nil {
		return err
	}
	stats, err := c.paymentService.Analytics(ctx.UserContext(), from, to)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment analytics retrieved", stats))
}

func (c *paymentController) Refund(ctx *fiber.Ctx) error {
	payment, err := c.paymentService.Refund(ctx.UserContext(), ctx.Params("transactionId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment refunded", payment))
}

func (c *paymentController) Cancel(ctx *fiber.Ctx) error {
	var req dto.CancelPaymentRequest
	if err := bindOptionalBody(ctx, &req); err != nil {
		return err
	}
	payment, err := c.paymentService.Cancel(ctx.UserContext(), ctx.Params("transactionId"), req.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment cancelled", payment))
}
