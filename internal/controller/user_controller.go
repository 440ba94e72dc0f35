package controller

import (
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/serverutils"
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type userController struct {
	userService  service.IUserService
	secureCookie bool
}

// NewUserController marks the session cookie Secure when secureCookie is set.
func NewUserController(userService service.IUserService, secureCookie bool) IUserController {
	return &userController{
		userService:  userService,
		secureCookie: secureCookie,
	}
}

func (c *userController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	users := api.Group("/users")
	users.Post("/register", c.Register)
	users.Get("/verify/:verificationToken", c.Verify)
	users.Post("/login", c.Login)
	users.Post("/forget-password", c.ForgetPassword)
	users.Post("/reset-password/:token", c.ResetPassword)

	users.Post("/logout", jwtMiddleware, c.Logout)
	users.Get("/user", jwtMiddleware, c.GetProfile)
	users.Put("/update-user", jwtMiddleware, c.UpdateProfile)
}

func (c *userController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.userService.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Registration successful, check your email to verify the account", res))
}

func (c *userController) Verify(ctx *fiber.Ctx) error {
	if err := c.userService.Verify(ctx.UserContext(), ctx.Params("verificationToken")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Email verified", nil))
}

func (c *userController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.userService.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.TokenCookieName,
		Value:    res.Token,
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *userController) Logout(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	if err := c.userService.Logout(ctx.UserContext(), caller.UserId); err != nil {
		return err
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.TokenCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   c.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out", nil))
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	user, err := c.userService.GetProfile(ctx.UserContext(), caller.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User retrieved", user))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	caller, err := serverutils.CurrentCaller(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	user, err := c.userService.UpdateProfile(ctx.UserContext(), caller.UserId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User updated", user))
}

func (c *userController) ForgetPassword(ctx *fiber.Ctx) error {
	var req dto.ForgetPasswordRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	if err := c.userService.ForgetPassword(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Password reset link sent", nil))
}

func (c *userController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bindBody(ctx, &req); err != nil {
		return err
	}
	if err := c.userService.ResetPassword(ctx.UserContext(), ctx.Params("token"), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Password has been reset", nil))
}
