package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// redisChannel carries escalation notices between instances so every
// connected agent sees the handoff regardless of which node owns the socket.
const redisChannel = "agentdesk_events"

type Hub struct {
	// Registered agents map: AgentID -> List of Clients (multi-device)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.AgentID] = append(h.clients[client.AgentID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Agent connected", map[string]interface{}{"agent_id": client.AgentID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.AgentID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.AgentID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.AgentID]) == 0 {
					delete(h.clients, client.AgentID)
					h.logger.Info("Hub", "Agent fully disconnected", map[string]interface{}{"agent_id": client.AgentID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes an escalation notice to every connected agent. Any agent
// may claim the conversation, so there is no per-agent routing here.
func (h *Hub) Broadcast(notice dto.EscalationNotice) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "escalation",
		"data": notice,
	})

	h.sendToAllLocal(data)

	// Relay to other instances.
	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), redisChannel, data).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay escalation to redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) sendToAllLocal(data []byte) {
	var dead []*Client

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// Slow or gone; Run owns the unregister and channel close.
				dead = append(dead, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		payload := []byte(msg.Payload)
		if !json.Valid(payload) {
			log.Printf("Redis msg parse error: invalid payload on %s", redisChannel)
			continue
		}
		h.sendToAllLocal(payload)
	}
}
