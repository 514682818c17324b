package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-cservice-be/internal/config"
	"ai-cservice-be/internal/controller"
	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/handler"
	"ai-cservice-be/internal/pkg/logger"
	"ai-cservice-be/internal/pkg/mailer"
	"ai-cservice-be/internal/repository/memory"
	"ai-cservice-be/internal/repository/unitofwork"
	"ai-cservice-be/internal/service"
	"ai-cservice-be/internal/websocket"
	"ai-cservice-be/pkg/agent/backend"
	"ai-cservice-be/pkg/agent/intent"
	"ai-cservice-be/pkg/agent/planner"
	"ai-cservice-be/pkg/agent/response"
	"ai-cservice-be/pkg/agent/tools"
	"ai-cservice-be/pkg/embedding"
	"ai-cservice-be/pkg/events"
	"ai-cservice-be/pkg/llm/factory"
	"ai-cservice-be/pkg/session"

	pktNats "ai-cservice-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	KnowledgeController controller.IKnowledgeController
	ChatController      controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Agent Desk
	AgentDeskHandler *handler.AgentDeskHandler
	WebSocketHub     *websocket.Hub

	// Held for shutdown
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		// Demo mode keeps the knowledge base in process memory.
		log.Printf("[WARN] No database configured, knowledge base is in-memory only")
		uowFactory = memory.NewFactory()
	}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisHealthy := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisHealthy = false
	}

	// Sessions live in Redis so they survive restarts; without Redis they
	// fall back to process memory with the same TTL semantics.
	sessionTTL := time.Duration(cfg.App.SessionTTLSeconds) * time.Second
	var sessionStore session.Store
	if redisHealthy {
		sessionStore = session.NewRedisStore(rdb, sessionTTL)
	} else {
		sessionStore = session.NewMemoryStore(sessionTTL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.AgentDeskLogPath)
	var hubRedis *redis.Client
	if redisHealthy {
		hubRedis = rdb
	}
	wsHub := websocket.NewHub(hubRedis, wsLogger)
	go wsHub.Run()

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 4. AI Providers
	var embeddingProvider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "dashscope":
		embeddingProvider = embedding.NewDashScopeProvider(
			cfg.Ai.DashScopeAPIKey,
			cfg.Ai.DashScopeBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: DASHSCOPE (%s)", cfg.Ai.EmbeddingModel)
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	default:
		embeddingProvider = embedding.NewDeterministicProvider(0)
		log.Printf("[INFO] Using Embedding Provider: LOCAL (deterministic)")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.DashScopeAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Agent Runtime
	mock := backend.NewMock()
	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewOrderTool(mock),
		tools.NewLogisticsTool(mock, nil),
		tools.NewReturnTool(mock, mock, nil),
		tools.NewPaymentTool(mock, mock, nil),
	} {
		if err := registry.Register(tool); err != nil {
			log.Fatalf("[FATAL] Failed to register tool: %v", err)
		}
	}

	// 6. Services
	knowledgeService := service.NewKnowledgeService(
		uowFactory,
		embeddingProvider,
		cfg.Ai.ChunkSize,
		cfg.Ai.ChunkOverlap,
		cfg.Ai.TopK,
		sysLogger,
	)

	publisherService := service.NewPublisherService(pubSub, cfg.App.EscalationTopic)

	// The consumer hands notices to NATS only when the desk subscriber is
	// also up; otherwise it pushes straight to the hub.
	var consumerNats *pktNats.Publisher
	if natsPub != nil && natsSub != nil {
		consumerNats = natsPub
	}
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EscalationTopic,
		wsHub,
		consumerNats,
		emailService,
		cfg.App.SupportEmail,
	)

	agentService := service.NewAgentService(
		sessionStore,
		intent.NewRecognizer(),
		planner.NewPlanner(registry),
		registry,
		response.NewGenerator(llmProvider),
		knowledgeService,
		publisherService,
		cfg.Ai.TopK,
		sysLogger,
	)

	// 7. Agent Desk feed off the event bus
	if natsSub != nil {
		subject := "events." + events.EscalationEventType
		err := natsSub.Subscribe(subject, "agentdesk-feed", func(ctx context.Context, evt events.Event) error {
			wsHub.Broadcast(noticeFromPayload(evt.Payload(), evt.Timestamp()))
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe agent desk feed: %v", err)
		}
	}

	agentDeskHandler := handler.NewAgentDeskHandler(wsHub, wsLogger)

	return &Container{
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		ChatController:      controller.NewChatController(agentService),
		ConsumerService:     consumerService,
		AgentDeskHandler:    agentDeskHandler,
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
	}
}

func noticeFromPayload(payload map[string]interface{}, at time.Time) dto.EscalationNotice {
	str := func(key string) string {
		if v, ok := payload[key].(string); ok {
			return v
		}
		return ""
	}
	return dto.EscalationNotice{
		UserId:    str("userId"),
		SessionId: str("sessionId"),
		Message:   str("message"),
		Reason:    str("reason"),
		Time:      at,
	}
}
