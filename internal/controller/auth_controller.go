package controller

import (
	"net/url"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/pkg/serverutils"
	"tria-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	identityService service.IIdentityService
	sessionService  service.ISessionService
	clientURL       string
	logger          logger.ILogger
}

func NewAuthController(
	identityService service.IIdentityService,
	sessionService service.ISessionService,
	clientURL string,
	log logger.ILogger,
) IAuthController {
	return &authController{
		identityService: identityService,
		sessionService:  sessionService,
		clientURL:       clientURL,
		logger:          log,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Post("/logout", serverutils.SessionMiddleware(c.sessionService), c.Logout)
	h.Get("/me", serverutils.SessionMiddleware(c.sessionService), c.Me)
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	authURL, err := c.identityService.BeginSignIn(ctx.UserContext(), provider)
	if err != nil {
		return toAppError(err)
	}

	return ctx.Redirect(authURL)
}

// Callback finishes the provider round trip. Browsers are sent back to the
// client with the session token in the query; with ?format=json the result
// is returned as JSON instead.
func (c *authController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	res, err := c.identityService.CompleteSignIn(ctx.UserContext(), provider, code, ctx.Query("state"))
	if err != nil {
		c.logger.Warn("AUTH", "Sign-in failed", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
		return toAppError(err)
	}

	if ctx.Query("format") == "json" || c.clientURL == "" {
		return ctx.JSON(serverutils.SuccessResponse("Sign in success", res))
	}

	redirect := c.clientURL + "/auth/callback?" + url.Values{
		"token":      {res.Token},
		"expires_at": {res.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")},
	}.Encode()
	return ctx.Redirect(redirect)
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	if err := c.sessionService.SignOut(ctx.UserContext(), serverutils.CurrentSession(ctx)); err != nil {
		return toAppError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Sign out success", nil))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	session := serverutils.CurrentSession(ctx)
	return ctx.JSON(serverutils.SuccessResponse("Success get session", dto.MeResponse{
		Account: dto.AccountResponse{
			Id:          session.Account.Id,
			Email:       session.Account.Email,
			DisplayName: session.Account.DisplayName,
			CreatedAt:   session.Account.CreatedAt,
			UpdatedAt:   session.Account.UpdatedAt,
		},
		ExpiresAt: session.Session.ExpiresAt,
	}))
}
