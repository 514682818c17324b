package controller

import (
	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/pkg/serverutils"
	"ai-cservice-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	agentService service.IAgentService
}

func NewChatController(agentService service.IAgentService) IChatController {
	return &chatController{
		agentService: agentService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1", serverutils.OptionalJwtMiddleware)
	h.Post("", c.Chat)
	h.Get("history/:sessionId", c.History)
	h.Delete("session/:sessionId", c.ClearHistory)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Authenticated identity wins over whatever the body carries.
	if userId, ok := ctx.Locals("user_id").(string); ok && userId != "" {
		req.UserId = userId
	}

	res, err := c.agentService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	userId := c.resolveUserId(ctx)

	res, err := c.agentService.History(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	userId := c.resolveUserId(ctx)

	if err := c.agentService.ClearHistory(ctx.Context(), userId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("History cleared", nil))
}

func (c *chatController) resolveUserId(ctx *fiber.Ctx) string {
	if userId, ok := ctx.Locals("user_id").(string); ok && userId != "" {
		return userId
	}
	return ctx.Query("userId")
}
