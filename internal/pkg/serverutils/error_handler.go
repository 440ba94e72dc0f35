package serverutils

import (
	"errors"

	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

var errorLogger logger.ILogger

// SetErrorLogger routes unexpected handler errors to the application logger.
func SetErrorLogger(l logger.ILogger) {
	errorLogger = l
}

// ErrorHandlerMiddleware converts errors returned by downstream handlers
// into the BaseResponse envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// ErrorHandler is the fiber.Config ErrorHandler counterpart for errors raised
// outside the middleware chain (routing, body limits).
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return WriteError(ctx, err)
}

func WriteError(ctx *fiber.Ctx, err error) error {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.HTTPStatus()
		if appErr.Kind == apperror.KindInternal && errorLogger != nil {
			errorLogger.Error("HTTP", "Unhandled internal error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		resp := ErrorResponse(status, appErr.PublicMessage())
		resp.Errors = appErr.Fields
		return ctx.Status(status).JSON(resp)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	if errorLogger != nil {
		errorLogger.Error("HTTP", "Unhandled error", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
}
