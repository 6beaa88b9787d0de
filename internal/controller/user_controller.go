package controller

import (
	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/pkg/serverutils"
	"tria-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	DeleteAccount(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
}

type userController struct {
	service   service.IUserService
	validator serverutils.SessionValidator
}

func NewUserController(service service.IUserService, validator serverutils.SessionValidator) IUserController {
	return &userController{service: service, validator: validator}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.SessionMiddleware(c.validator))
	h.Get("/profile", c.GetProfile)
	h.Put("/profile", c.UpdateProfile)
	h.Delete("/account", c.DeleteAccount)
	h.Get("/export", c.Export)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	res, err := c.service.GetProfile(ctx.UserContext(), serverutils.CurrentSession(ctx))
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.UserContext(), serverutils.CurrentSession(ctx), &req)
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update profile", res))
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	res, err := c.service.DeleteAccount(ctx.UserContext(), serverutils.CurrentSession(ctx))
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *userController) Export(ctx *fiber.Ctx) error {
	res, err := c.service.Export(ctx.UserContext(), serverutils.CurrentSession(ctx), ctx.QueryBool("email", false))
	if err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success export data", res))
}
