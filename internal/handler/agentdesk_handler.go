package handler

import (
	"os"

	"ai-cservice-be/internal/pkg/logger"
	internalWS "ai-cservice-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AgentDeskHandler exposes the websocket feed human agents listen on for
// escalated conversations.
type AgentDeskHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewAgentDeskHandler(hub *internalWS.Hub, log logger.ILogger) *AgentDeskHandler {
	return &AgentDeskHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades an authenticated agent connection to a websocket.
func (h *AgentDeskHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on websocket handshakes, so the token may
	// arrive as a query param instead.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("AgentDeskHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	agentID, ok := claims["user_id"].(string)
	if !ok || agentID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("AgentDeskHandler", "Starting WebSocket session", map[string]interface{}{"agent_id": agentID})
			internalWS.ServeWs(h.hub, conn, agentID)
			h.logger.Info("AgentDeskHandler", "WebSocket session ended", map[string]interface{}{"agent_id": agentID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the agent desk routes.
func (h *AgentDeskHandler) RegisterRoutes(router fiber.Router) {
	desk := router.Group("/agentdesk/v1")
	desk.Get("/ws", h.ServeWs)
}
