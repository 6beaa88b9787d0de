package serverutils

import (
	"context"
	"errors"
	"strings"

	"tria-chat-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

const sessionLocalsKey = "session"

// SessionValidator resolves a bearer token to the caller's session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*entity.SessionContext, error)
}

func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// SessionMiddleware rejects requests without a valid session token.
func SessionMiddleware(v SessionValidator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := BearerToken(ctx)
		if token == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}

		session, err := v.Validate(ctx.UserContext(), token)
		if err != nil || session == nil {
			return rejectSession(ctx, err)
		}

		ctx.Locals(sessionLocalsKey, session)
		return ctx.Next()
	}
}

// OptionalSessionMiddleware lets guests through. A present but invalid
// token is still rejected so clients notice an expired sign-in.
func OptionalSessionMiddleware(v SessionValidator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := BearerToken(ctx)
		if token == "" {
			return ctx.Next()
		}

		session, err := v.Validate(ctx.UserContext(), token)
		if err != nil || session == nil {
			return rejectSession(ctx, err)
		}

		ctx.Locals(sessionLocalsKey, session)
		return ctx.Next()
	}
}

// rejectSession answers 401 for a bad token and 500 when the session
// store itself failed.
func rejectSession(ctx *fiber.Ctx, err error) error {
	if err != nil && !errors.Is(err, entity.ErrInvalidSession) {
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Failed to validate session"))
	}
	return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid or expired session"))
}

// CurrentSession returns the caller's session, or nil for guests.
func CurrentSession(ctx *fiber.Ctx) *entity.SessionContext {
	session, _ := ctx.Locals(sessionLocalsKey).(*entity.SessionContext)
	return session
}
