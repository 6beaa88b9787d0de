package controller

import (
	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/pkg/serverutils"
	"tria-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	Models(ctx *fiber.Ctx) error
	Personas(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	validator serverutils.SessionValidator
}

func NewChatController(service service.IChatService, validator serverutils.SessionValidator) IChatController {
	return &chatController{service: service, validator: validator}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/send", serverutils.OptionalSessionMiddleware(c.validator), c.Send)
	h.Get("/models", c.Models)
	h.Get("/personas", c.Personas)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), serverutils.CurrentSession(ctx), &req)
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) Models(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get models", c.service.Models()))
}

func (c *chatController) Personas(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get personas", c.service.Personas()))
}
