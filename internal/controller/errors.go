package controller

import (
	"errors"

	"tria-chat-be/internal/pkg/serverutils"
	"tria-chat-be/internal/service"
	"tria-chat-be/pkg/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// toAppError attaches an HTTP status to known service errors. Anything else
// falls through to the error handler as a 500.
func toAppError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidChatType),
		errors.Is(err, service.ErrInvalidSender),
		errors.Is(err, service.ErrChatTypeMismatch),
		errors.Is(err, identity.ErrUnsupportedProvider):
		return serverutils.NewAppError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrMissingEmail),
		errors.Is(err, identity.ErrInvalidState),
		errors.Is(err, identity.ErrProviderRejected):
		return serverutils.NewAppError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrAccountNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}

func parseIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.NewAppError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid request body")
	}
	return serverutils.ValidateRequest(out)
}
