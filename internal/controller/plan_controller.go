package controller

import (
	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type planController struct {
	planService service.IPlanService
}

func NewPlanController(planService service.IPlanService) IPlanController {
	return &planController{planService: planService}
}

func (c *planController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	adminOnly := serverutils.RequireRoles("admin")

	plans := api.Group("/plans")
	plans.Get("/", c.List)
	plans.Get("/all", jwtMiddleware, adminOnly, c.ListAll)
	plans.Get("/name/:name", c.GetByName)
	plans.Get("/:id", c.Get)
	plans.Post("/", jwtMiddleware, adminOnly, c.Create)
	plans.Put("/:id", jwtMiddleware, adminOnly, c.Update)
	plans.Delete("/:id", jwtMiddleware, adminOnly, c.Deactivate)
}

// List returns the active catalog, cheapest first.
func (c *planController) List(ctx *fiber.Ctx) error {
	plans, err := c.planService.ListActive(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) ListAll(ctx *fiber.Ctx) error {
	plans, err := c.planService.ListAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) Get(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	plan, err := c.planService.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan retrieved", plan))
}

func (c *planController) GetByName(ctx *fiber.Ctx) error {
	plan, err := c.planService.GetByName(ctx.UserContext(), ctx.Params("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan retrieved", plan))
}

func (c *planController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	plan, err := c.planService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Plan created", plan))
}

func (c *planController) Update(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdatePlanRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	plan, err := c.planService.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan updated", plan))
}

// Deactivate hides the plan from the catalog. Existing subscriptions keep it.
func (c *planController) Deactivate(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.planService.Deactivate(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Plan deactivated", nil))
}
