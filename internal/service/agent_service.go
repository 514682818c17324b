// FILE: internal/service/agent_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/entity"
	"ai-cservice-be/internal/pkg/logger"
	"ai-cservice-be/pkg/agent/intent"
	"ai-cservice-be/pkg/agent/planner"
	"ai-cservice-be/pkg/agent/response"
	"ai-cservice-be/pkg/agent/tools"
	"ai-cservice-be/pkg/llm"
	"ai-cservice-be/pkg/session"

	"github.com/google/uuid"
)

const (
	ModeRAG      = "rag"
	ModeTool     = "tool"
	ModeTask     = "task"
	ModeEscalate = "escalate"

	defaultUserId   = "default"
	escalateAnswer  = "我已记录您的问题，正在为您转接人工客服，请稍候..."
	escalateReason  = "用户请求人工客服"
	sourcePreviewLn = 200
)

// Searcher is the slice of the knowledge service the agent needs.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error)
}

type IAgentService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, userId, sessionId string) (*dto.ChatHistoryResponse, error)
	ClearHistory(ctx context.Context, userId, sessionId string) error
}

type agentService struct {
	sessions   session.Store
	recognizer *intent.Recognizer
	planner    *planner.Planner
	registry   *tools.Registry
	generator  *response.Generator
	searcher   Searcher
	publisher  IPublisherService
	topK       int
	logger     logger.ILogger
}

func NewAgentService(
	sessions session.Store,
	recognizer *intent.Recognizer,
	taskPlanner *planner.Planner,
	registry *tools.Registry,
	generator *response.Generator,
	searcher Searcher,
	publisher IPublisherService,
	topK int,
	log logger.ILogger,
) IAgentService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &agentService{
		sessions:   sessions,
		recognizer: recognizer,
		planner:    taskPlanner,
		registry:   registry,
		generator:  generator,
		searcher:   searcher,
		publisher:  publisher,
		topK:       topK,
		logger:     log,
	}
}

// Chat routes one user message. Escalation requests win over everything,
// then a recognized intent runs its tool, then an identified multi-step
// task runs through the planner, and anything left falls back to retrieval.
func (s *agentService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	userId := req.UserId
	if userId == "" {
		userId = defaultUserId
	}
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	history, err := s.sessions.Get(ctx, userId, sessionId)
	if err != nil {
		// A broken session store degrades to a fresh conversation.
		s.logger.Warn("AgentService", "Failed to load history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		history = nil
	}

	res := &dto.ChatResponse{SessionId: sessionId}

	switch {
	case s.recognizer.ShouldEscalate(req.Message):
		res.Mode = ModeEscalate
		res.Answer = escalateAnswer
		s.publishEscalation(ctx, userId, sessionId, req.Message)

	default:
		rec := s.recognizer.Recognize(req.Message, userId)

		if rec.Intent != intent.IntentUnknown {
			res.Mode = ModeTool
			s.runTool(ctx, req.Message, rec, res)
		} else if taskType := s.planner.IdentifyTaskType(rec.Params, req.Message); taskType != "" {
			res.Mode = ModeTask
			s.runTask(ctx, req.Message, taskType, rec.Params, res)
		} else {
			res.Mode = ModeRAG
			if err := s.runRAG(ctx, req.Message, history, res); err != nil {
				return nil, err
			}
		}
	}

	s.appendTurns(ctx, userId, sessionId, req.Message, res)
	return res, nil
}

func (s *agentService) runTool(ctx context.Context, message string, rec intent.Recognition, res *dto.ChatResponse) {
	result, err := s.registry.Invoke(ctx, rec.Tool, rec.Params)
	if err != nil {
		// Parameter errors are part of the conversation, not a server fault.
		result = tools.Failure("%s", err.Error())
	}

	if data, merr := json.Marshal(result); merr == nil {
		res.ToolResult = data
	}
	res.Answer = s.generator.GenerateToolReply(ctx, message, result)

	s.logger.Info("AgentService", "Tool executed", map[string]interface{}{
		"intent": rec.Intent,
		"tool":   rec.Tool,
	})
}

func (s *agentService) runTask(ctx context.Context, message, taskType string, params tools.Params, res *dto.ChatResponse) {
	taskResult, err := s.planner.ExecuteTask(ctx, taskType, params)
	if err != nil {
		s.logger.Error("AgentService", "Task execution failed", map[string]interface{}{
			"task_type": taskType,
			"error":     err.Error(),
		})
		res.Answer = "任务执行失败，请稍后重试或联系人工客服。"
		return
	}

	if data, merr := json.Marshal(taskResult); merr == nil {
		res.TaskResult = data
	}
	report := planner.GenerateReport(taskResult)
	res.Answer = s.generator.GenerateTaskReply(ctx, message, report)

	s.logger.Info("AgentService", "Task executed", map[string]interface{}{
		"task_type": taskType,
		"success":   taskResult.Success,
	})
}

func (s *agentService) runRAG(ctx context.Context, message string, history []session.Turn, res *dto.ChatResponse) error {
	chunks, err := s.searcher.Search(ctx, message, s.topK)
	if err != nil {
		return err
	}

	contexts := make([]response.Source, len(chunks))
	for i, c := range chunks {
		contexts[i] = response.Source{
			DocumentName: c.DocumentName,
			Content:      c.Chunk.Content,
			Score:        c.Score,
		}
	}

	res.Answer = s.generator.Generate(ctx, message, contexts, toLLMHistory(history))

	res.Sources = make([]dto.SourceDTO, len(chunks))
	for i, c := range chunks {
		res.Sources[i] = dto.SourceDTO{
			DocumentName: c.DocumentName,
			Content:      preview(c.Chunk.Content, sourcePreviewLn),
			Score:        c.Score,
		}
	}
	return nil
}

func (s *agentService) publishEscalation(ctx context.Context, userId, sessionId, message string) {
	if s.publisher == nil {
		return
	}
	notice := dto.EscalationNotice{
		UserId:    userId,
		SessionId: sessionId,
		Message:   message,
		Reason:    escalateReason,
		Time:      time.Now(),
	}
	payload, err := json.Marshal(notice)
	if err == nil {
		err = s.publisher.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Error("AgentService", "Failed to publish escalation", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (s *agentService) appendTurns(ctx context.Context, userId, sessionId, message string, res *dto.ChatResponse) {
	now := time.Now()

	assistant := session.Turn{
		Role:       session.RoleAssistant,
		Content:    res.Answer,
		Timestamp:  now,
		Mode:       res.Mode,
		ToolResult: res.ToolResult,
		TaskResult: res.TaskResult,
	}
	for _, src := range res.Sources {
		assistant.Sources = append(assistant.Sources, src.DocumentName)
	}

	err := s.sessions.Append(ctx, userId, sessionId,
		session.Turn{Role: session.RoleUser, Content: message, Timestamp: now},
		assistant,
	)
	if err != nil {
		s.logger.Warn("AgentService", "Failed to save history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (s *agentService) History(ctx context.Context, userId, sessionId string) (*dto.ChatHistoryResponse, error) {
	if userId == "" {
		userId = defaultUserId
	}

	turns, err := s.sessions.Get(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	res := &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Turns:     make([]dto.ChatTurnDTO, len(turns)),
	}
	for i, t := range turns {
		res.Turns[i] = dto.ChatTurnDTO{
			Role:      t.Role,
			Content:   t.Content,
			Timestamp: t.Timestamp,
			Mode:      t.Mode,
			Sources:   t.Sources,
		}
	}
	return res, nil
}

func (s *agentService) ClearHistory(ctx context.Context, userId, sessionId string) error {
	if userId == "" {
		userId = defaultUserId
	}
	return s.sessions.Delete(ctx, userId, sessionId)
}

func toLLMHistory(turns []session.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
