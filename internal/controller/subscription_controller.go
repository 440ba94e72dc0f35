package controller

import (
	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubscriptionController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type subscriptionController struct {
	subscriptionService service.ISubscriptionService
}

func NewSubscriptionController(subscriptionService service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{subscriptionService: subscriptionService}
}

func (c *subscriptionController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	adminOnly := serverutils.RequireRoles("admin")

	subs := api.Group("/subscriptions")
	subs.Post("/createFreeSubscription/:userId", c.CreateFree)

	subs.Get("/getUserSubscription", jwtMiddleware, c.GetUserSubscription)
	subs.Get("/getSubscriptionById/:subscriptionId", jwtMiddleware, c.GetById)
	subs.Get("/getAllSubscriptions", jwtMiddleware, adminOnly, c.ListAll)

	// Mutations accept both verbs.
	for _, register := range []func(string, ...fiber.Handler) fiber.Router{subs.Put, subs.Post} {
		register("/updateSubscription/:subscriptionId", jwtMiddleware, c.Update)
		register("/cancelSubscription/:subscriptionId", jwtMiddleware, c.Cancel)
		register("/renewSubscription/:subscriptionId", jwtMiddleware, c.Renew)
		register("/upgradeSubscription", jwtMiddleware, c.Upgrade)
		register("/activateSubscription/:subscriptionId", jwtMiddleware, adminOnly, c.Activate)
		register("/deactivateSubscription/:subscriptionId", jwtMiddleware, adminOnly, c.Deactivate)
	}
}

func (c *subscriptionController) CreateFree(ctx *fiber.Ctx) error {
	userId, err := parseUUIDParam(ctx, "userId")
	if err != nil {
		return err
	}
	sub, err := c.subscriptionService.CreateFreeSubscription(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Free subscription created", sub))
}

func (c *subscriptionController) GetUserSubscription(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	sub, err := c.subscriptionService.GetUserSubscription(ctx.UserContext(), caller.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription retrieved", sub))
}

func (c *subscriptionController) GetById(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "subscriptionId")
	if err != nil {
		return err
	}
	sub, err := c.subscriptionService.GetById(ctx.UserContext(), caller.UserId, caller.IsAdmin(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription retrieved", sub))
}

func (c *subscriptionController) ListAll(ctx *fiber.Ctx) error {
	page, err := c.subscriptionService.ListAll(ctx.UserContext(), ctx.Query("status"), queryInt(ctx, "page", 1), queryInt(ctx, "limit", 10))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscriptions retrieved", page))
}

func (c *subscriptionController) Update(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "subscriptionId")
	if err != nil {
		return err
	}
	var req dto.UpdateSubscriptionRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	sub, err := c.subscriptionService.Update(ctx.UserContext(), caller.UserId, caller.IsAdmin(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription updated", sub))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "subscriptionId")
	if err != nil {
		return err
	}
	sub, err := c.subscriptionService.Cancel(ctx.UserContext(), caller.UserId, caller.IsAdmin(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", sub))
}

func (c *subscriptionController) Renew(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "subscriptionId")
	if err != nil {
		return err
	}
	var req dto.RenewSubscriptionRequest
	if err := bindOptionalBody(ctx, &req); err != nil {
		return err
	}
	sub, err := c.subscriptionService.Renew(ctx.UserContext(), caller.UserId, caller.IsAdmin(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription renewed", sub))
}

// Upgrade starts a prorated plan change; the subscription stays
// pending_payment until settlement.
func (c *subscriptionController) Upgrade(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	var req dto.UpgradeSubscriptionRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.subscriptionService.InitiateUpgrade(ctx.UserContext(), caller.UserId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Upgrade initiated", res))
}

func (c *subscriptionController) Activate(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "subscriptionId")
	if err != nil {
		return err
	}
	sub, err := c.subscriptionService.Activate(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription activated", sub))
}

func (c *subscriptionController) Deactivate(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "subscriptionId")
	if err != nil {
		return err
	}
	sub, err := c.subscriptionService.Deactivate(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription deactivated", sub))
}
