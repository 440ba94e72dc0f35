package controller

import (
	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{sessionService: sessionService}
}

func (c *sessionController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	sessions := api.Group("/sessions")
	sessions.Get("/", c.List)
	sessions.Post("/create", jwtMiddleware, serverutils.RequireRoles("host", "admin"), c.Create)
	sessions.Get("/:id", c.Get)
	sessions.Put("/:id", jwtMiddleware, c.Update)
	sessions.Delete("/:id", jwtMiddleware, c.Cancel)
	sessions.Post("/:id/join", jwtMiddleware, c.Join)
	sessions.Post("/:id/start", jwtMiddleware, c.Start)
	sessions.Post("/:id/end", jwtMiddleware, c.End)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateSessionRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	session, err := c.sessionService.Create(ctx.UserContext(), caller.UserId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", session))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	query := dto.SessionListQuery{
		Category:     ctx.Query("category"),
		AccessLevel:  ctx.Query("access_level"),
		Search:       ctx.Query("search"),
		UpcomingOnly: ctx.QueryBool("upcoming_only", false),
		Page:         queryInt(ctx, "page", 1),
		Limit:        queryInt(ctx, "limit", 10),
	}
	page, err := c.sessionService.List(ctx.UserContext(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions retrieved", page))
}

func (c *sessionController) Get(ctx *fiber.Ctx) error {
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	session, err := c.sessionService.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session retrieved", session))
}

func (c *sessionController) Update(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateSessionRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	session, err := c.sessionService.Update(ctx.UserContext(), caller.UserId, caller.IsAdmin(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session updated", session))
}

func (c *sessionController) Cancel(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.sessionService.Cancel(ctx.UserContext(), caller.UserId, caller.IsAdmin(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session cancelled", nil))
}

func (c *sessionController) Join(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.JoinSessionRequest
	if err := bindOptionalBody(ctx, &req); err != nil {
		return err
	}
	session, err := c.sessionService.Join(ctx.UserContext(), caller.UserId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Joined session", session))
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	session, err := c.sessionService.Start(ctx.UserContext(), caller.UserId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session started", session))
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	session, err := c.sessionService.End(ctx.UserContext(), caller.UserId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session ended", session))
}
