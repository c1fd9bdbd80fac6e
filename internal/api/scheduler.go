package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/internal/scheduler"
)

// InboxSchedulerInterface defines the inbox scheduler operations the API uses
type InboxSchedulerInterface interface {
	Status() map[string]interface{}
	RunOnce(ctx context.Context) (*scheduler.PassResult, error)
}

// SchedulerHandler handles inbox scheduler API endpoints
type SchedulerHandler struct {
	inbox  InboxSchedulerInterface
	logger zerolog.Logger
}

// NewSchedulerHandler creates a new scheduler handler. inbox may be nil when
// the inbox is disabled.
func NewSchedulerHandler(inbox InboxSchedulerInterface, logger zerolog.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		inbox:  inbox,
		logger: logger.With().Str("component", "scheduler-handler").Logger(),
	}
}

// RegisterRoutes registers scheduler API routes
func (h *SchedulerHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/inbox", h.handleGetStatus)
	app.Post("/api/v1/inbox/run", h.handleRun)
}

func (h *SchedulerHandler) handleGetStatus(c *fiber.Ctx) error {
	if h.inbox == nil {
		return c.JSON(fiber.Map{
			"enabled": false,
			"message": "Inbox is disabled. Set inbox.enabled=true to enable.",
		})
	}
	status := h.inbox.Status()
	status["enabled"] = true
	return c.JSON(status)
}

// handleRun runs one inbox pass synchronously
func (h *SchedulerHandler) handleRun(c *fiber.Ctx) error {
	if h.inbox == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "inbox is disabled",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Minute)
	defer cancel()

	result, err := h.inbox.RunOnce(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Manual inbox pass failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"result": result,
		})
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"result": result,
	})
}
