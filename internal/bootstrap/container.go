package bootstrap

import (
	"context"
	"fmt"

	"course-assistant-be/internal/config"
	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/controller"
	"course-assistant-be/internal/service"
	"course-assistant-be/internal/websocket"
	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/llm/factory"
	"course-assistant-be/pkg/rag/orchestrator"
	"course-assistant-be/pkg/rag/tools"
)

type Container struct {
	*Core

	// Controllers
	ChatController   controller.IChatController
	CourseController controller.ICourseController
	IngestController controller.IIngestController
	HealthController controller.IHealthController

	// Background Services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	WebSocketHub *websocket.Hub
}

func NewContainer(ctx context.Context, core *Core) (*Container, error) {
	cfg := core.Config
	sysLogger := core.Logger

	// 1. Retrieval
	provider, err := core.EmbeddingProvider(ctx)
	if err != nil {
		return nil, err
	}
	indexerService, err := core.NewIndexer(ctx)
	if err != nil {
		return nil, err
	}
	searchService := service.NewSearchService(core.UowFactory, provider, cfg.Rag.IndexName, sysLogger)
	courseService := service.NewCourseService(core.UowFactory, sysLogger)

	consumerService := service.NewConsumerService(core.PubSub, constant.EmbedDocumentTopic, indexerService, sysLogger)

	// 2. Chat
	prompts, err := config.LoadPrompts(cfg.Ai.PromptsFile)
	if err != nil {
		return nil, err
	}

	oracle, err := factory.NewOracle(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.LLMAPIKey)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	registry := tools.NewRegistry(
		tools.NewListCoursesTool(courseService, prompts.ToolDescription(tools.ListCoursesName)),
		tools.NewSearchKnowledgeBaseTool(
			searchService,
			prompts.ToolDescription(tools.SearchKnowledgeBaseName),
			cfg.Rag.SearchTopK,
			cfg.Rag.SearchThreshold,
		),
	)

	oracleOptions := []llm.Option{llm.WithTemperature(cfg.Ai.Temperature)}
	if cfg.Ai.MaxTokens > 0 {
		oracleOptions = append(oracleOptions, llm.WithMaxTokens(cfg.Ai.MaxTokens))
	}

	orch := orchestrator.New(
		oracle,
		registry,
		prompts.SystemPromptOr(constant.ChatSystemPromptV1),
		orchestrator.WithMaxRoundTrips(cfg.Ai.MaxRoundTrips),
		orchestrator.WithOracleOptions(oracleOptions...),
		orchestrator.WithLogger(sysLogger),
	)
	chatService := service.NewChatService(orch, sysLogger)

	wsHub := websocket.NewHub(sysLogger)

	// 3. Controllers
	var pinger controller.Pinger
	if core.DB != nil {
		if sqlDB, err := core.DB.DB(); err == nil {
			pinger = sqlDB
		}
	}

	return &Container{
		Core:             core,
		ChatController:   controller.NewChatController(chatService, wsHub, sysLogger),
		CourseController: controller.NewCourseController(courseService, searchService),
		IngestController: controller.NewIngestController(core.IngestService, indexerService, cfg.Auth.JWTSecret),
		HealthController: controller.NewHealthController(pinger),
		ConsumerService:  consumerService,
		WebSocketHub:     wsHub,
	}, nil
}
