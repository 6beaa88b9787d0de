package controller

import (
	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/pkg/serverutils"
	"tria-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type conversationController struct {
	service   service.IConversationService
	validator serverutils.SessionValidator
}

func NewConversationController(service service.IConversationService, validator serverutils.SessionValidator) IConversationController {
	return &conversationController{service: service, validator: validator}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Use(serverutils.SessionMiddleware(c.validator))
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get("/history", c.History)
	h.Put("/:id", c.Rename)
	h.Delete("/:id", c.Delete)
	h.Get("/:id/messages", c.Messages)
}

// GetAll accepts an optional ?chat_type= filter.
func (c *conversationController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), serverutils.CurrentSession(ctx), ctx.Query("chat_type"))
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all conversation", res))
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), serverutils.CurrentSession(ctx), &req)
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *conversationController) Rename(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameConversationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Rename(ctx.UserContext(), serverutils.CurrentSession(ctx), id, &req)
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success rename conversation", res))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), serverutils.CurrentSession(ctx), id); err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete conversation", dto.DeleteConversationResponse{Id: id}))
}

func (c *conversationController) Messages(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Messages(ctx.UserContext(), serverutils.CurrentSession(ctx), id)
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

// History lists messages across conversations. Without ?chat_type= it
// covers every chat type.
func (c *conversationController) History(ctx *fiber.Ctx) error {
	session := serverutils.CurrentSession(ctx)
	chatType := ctx.Query("chat_type")
	limit := ctx.QueryInt("limit", 0)

	var res []*dto.HistoryItemResponse
	var err error
	if chatType == "" {
		res, err = c.service.AllHistory(ctx.UserContext(), session, limit)
	} else {
		res, err = c.service.History(ctx.UserContext(), session, chatType, limit)
	}
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}
