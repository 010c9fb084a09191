package service

import (
	"context"
	"fmt"
	"strings"

	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/dto"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/rag"
	"course-assistant-be/pkg/rag/orchestrator"
)

type IChatService interface {
	// Stream validates the conversation and starts one assistant turn. The
	// channel is closed when the turn ends or ctx is cancelled.
	Stream(ctx context.Context, req *dto.ChatRequest) (<-chan orchestrator.Event, error)
}

type chatService struct {
	orchestrator *orchestrator.Orchestrator
	logger       logger.ILogger
}

func NewChatService(orch *orchestrator.Orchestrator, logger logger.ILogger) IChatService {
	return &chatService{
		orchestrator: orch,
		logger:       logger,
	}
}

func (s *chatService) Stream(ctx context.Context, req *dto.ChatRequest) (<-chan orchestrator.Event, error) {
	history, err := toHistory(req.Messages)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("CHAT", "Starting chat turn", map[string]interface{}{
		"messages": len(history),
	})
	return s.orchestrator.Stream(ctx, history), nil
}

// toHistory keeps user and assistant turns. Client supplied system messages are
// dropped so the server prompt cannot be overridden.
func toHistory(messages []dto.ChatMessageDTO) ([]llm.Message, error) {
	history := make([]llm.Message, 0, len(messages))
	hasUser := false
	for _, m := range messages {
		text := strings.TrimSpace(m.Text())
		if text == "" {
			continue
		}
		switch m.Role {
		case constant.ChatMessageRoleUser:
			hasUser = true
			history = append(history, llm.Message{Role: llm.RoleUser, Content: text})
		case constant.ChatMessageRoleAssistant:
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: text})
		}
	}
	if !hasUser {
		return nil, fmt.Errorf("%w: conversation has no user message", rag.ErrInvalidArgument)
	}
	return history, nil
}
