package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	AgentDeskLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionTTLSeconds  int
	EscalationTopic    string
	SupportEmail       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AIConfig struct {
	EmbeddingProvider string // "dashscope", "ollama" or "local"
	EmbeddingModel    string
	DashScopeAPIKey   string
	DashScopeBaseURL  string
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "dashscope" or "ollama"
	LLMModel          string
	TopK              int
	ChunkSize         int
	ChunkOverlap      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			AgentDeskLogPath:   getEnv("AGENTDESK_LOG_FILE_PATH", "agentdesk.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTLSeconds:  getEnvAsInt("SESSION_TTL", 3600),
			EscalationTopic:    getEnv("ESCALATION_TOPIC_NAME", "AGENT_ESCALATION"),
			SupportEmail:       getEnv("SUPPORT_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "AI客服"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "local"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-v2"),
			DashScopeAPIKey:   getEnv("DASHSCOPE_API_KEY", ""),
			DashScopeBaseURL:  getEnv("DASHSCOPE_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "qwen-plus"),
			TopK:              getEnvAsInt("RAG_TOP_K", 5),
			ChunkSize:         getEnvAsInt("CHUNK_SIZE", 2000),
			ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
