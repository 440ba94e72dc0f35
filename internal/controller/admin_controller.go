package controller

import (
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type adminController struct {
	adminService service.IAdminService
}

func NewAdminController(adminService service.IAdminService) IAdminController {
	return &adminController{adminService: adminService}
}

func (c *adminController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	admin := api.Group("/admin", jwtMiddleware, serverutils.RequireRoles("admin"))
	admin.Get("/dashboard", c.GetDashboardStats)
	admin.Get("/logs", c.GetSystemLogs)
	admin.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) GetDashboardStats(ctx *fiber.Ctx) error {
	stats, err := c.adminService.GetDashboardStats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats retrieved", stats))
}

// GetSystemLogs reads the application log by default; ?source=webhooks
// selects the webhook delivery log.
func (c *adminController) GetSystemLogs(ctx *fiber.Ctx) error {
	logs, err := c.adminService.GetSystemLogs(
		ctx.UserContext(),
		ctx.Query("source", service.LogSourceApp),
		queryInt(ctx, "page", 1),
		queryInt(ctx, "limit", 50),
		ctx.Query("level"),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs retrieved", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.adminService.GetLogDetail(ctx.UserContext(), ctx.Query("source", service.LogSourceApp), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log retrieved", entry))
}
