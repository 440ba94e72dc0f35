package serverutils

import (
	"strings"
	"time"

	"podcast-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenCookieName = "token"

// NewJwtMiddleware accepts a Bearer header or the session cookie and stores
// user_id and role in ctx.Locals.
func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ""
		authHeader := ctx.Get("Authorization")
		if len(authHeader) >= 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		} else {
			tokenStr = ctx.Cookies(TokenCookieName)
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token claims"))
		}

		ctx.Locals("user_id", claims["user_id"])
		ctx.Locals("role", claims["role"])
		return ctx.Next()
	}
}

// RequireRoles must run after the JWT middleware.
func RequireRoles(roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		role, _ := ctx.Locals("role").(string)
		for _, r := range roles {
			if r == role {
				return ctx.Next()
			}
		}
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(403, "Access denied: requires role "+strings.Join(roles, " or ")))
	}
}

func GenerateToken(secret string, userId uuid.UUID, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Caller identifies the authenticated user of a request.
type Caller struct {
	UserId uuid.UUID
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == "admin"
}

func CurrentCaller(ctx *fiber.Ctx) (Caller, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return Caller{}, apperror.Unauthorized("unauthorized")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return Caller{}, apperror.Unauthorized("invalid user id in token")
	}
	role, _ := ctx.Locals("role").(string)
	return Caller{UserId: userId, Role: role}, nil
}
