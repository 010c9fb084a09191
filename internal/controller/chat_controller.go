package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/dto"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/pkg/serverutils"
	"course-assistant-be/internal/service"
	"course-assistant-be/internal/websocket"
	"course-assistant-be/pkg/rag/orchestrator"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	hub         *websocket.Hub
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, hub *websocket.Hub, logger logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		hub:         hub,
		logger:      logger,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.Chat)
	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/ws", fiberws.New(func(conn *fiberws.Conn) {
		websocket.ServeChat(c.hub, conn, c.startTurn, c.logger)
	}))
}

// Chat streams one turn as server-sent events. Nothing is committed until the
// first event arrives, so an early failure is still a plain 500.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// fasthttp gives no disconnect signal; a failed write cancels the turn.
	turnCtx, cancel := context.WithCancel(context.Background())
	events, err := c.chatService.Stream(turnCtx, &req)
	if err != nil {
		cancel()
		return err
	}

	first, ok := <-events
	if !ok || first.Type == orchestrator.EventError {
		cancel()
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": constant.ChatStreamFailedMessage,
		})
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeEvent(w, first); err != nil {
			drain(events, cancel)
			return
		}
		for event := range events {
			if err := writeEvent(w, event); err != nil {
				c.logger.Info("CHAT", "Client disconnected mid-stream", map[string]interface{}{"error": err.Error()})
				drain(events, cancel)
				return
			}
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
		_ = w.Flush()
	})
	return nil
}

func (c *chatController) startTurn(ctx context.Context, payload []byte) (<-chan orchestrator.Event, error) {
	var req dto.ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode chat request: %w", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return c.chatService.Stream(ctx, &req)
}

func writeEvent(w *bufio.Writer, event orchestrator.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

func drain(events <-chan orchestrator.Event, cancel context.CancelFunc) {
	cancel()
	for range events {
	}
}
