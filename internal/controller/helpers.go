package controller

import (
	"strconv"
	"time"

	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + name)
	}
	return id, nil
}

// bindBody parses the JSON body into req and runs tag validation.
func bindBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

// bindOptionalBody tolerates an empty body.
func bindOptionalBody(ctx *fiber.Ctx, req interface{}) error {
	if len(ctx.Body()) == 0 {
		return serverutils.ValidateRequest(req)
	}
	return bindBody(ctx, req)
}

func queryInt(ctx *fiber.Ctx, key string, fallback int) int {
	v, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(ctx *fiber.Ctx, key string) (*time.Time, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("invalid " + key + ": expected RFC 3339 or YYYY-MM-DD")
}
