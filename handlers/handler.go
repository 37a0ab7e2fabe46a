package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"money-dog-go-be/controller"
)

// Handler serves the companion API. Each caller is identified by the
// X-User-ID header and gets their own controller from the registry.
type Handler struct {
	Registry *controller.Registry
	Log      *zap.Logger
	// Timeout bounds the model round trip of a single request.
	Timeout time.Duration
}

// Register mounts all routes on router.
func Register(router fiber.Router, h *Handler) {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}

	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	router.Get("/state", h.withController(h.GetState))
	router.Put("/screen", h.withController(h.Navigate))

	router.Get("/messages", h.withController(h.ListMessages))
	router.Post("/messages", h.withController(h.PostMessage))

	router.Get("/goals", h.withController(h.ListGoals))
	router.Post("/goals", h.withController(h.CreateGoal))
	router.Post("/goals/:id/deposits", h.withController(h.Deposit))

	router.Get("/diary", h.withController(h.ListDiary))
	router.Post("/diary", h.withController(h.SaveDiaryEntry))
}

type controllerHandler func(c *fiber.Ctx, ctl *controller.Controller) error

func (h *Handler) withController(next controllerHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// TODO: take the user from an auth middleware instead of trusting the header
		userID, err := uuid.Parse(c.Get("X-User-ID"))
		if err != nil || userID == uuid.Nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID required in X-User-ID header"})
		}

		ctl, err := h.Registry.Get(c.UserContext(), userID)
		if err != nil {
			h.Log.Error("Failed to load user", zap.String("user_id", userID.String()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
		}
		return next(c, ctl)
	}
}

// requestContext bounds model calls made on behalf of c.
func (h *Handler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.Timeout)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, controller.ErrGoalNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Goal not found"})
	case errors.Is(err, controller.ErrSendInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, controller.ErrBlankText),
		errors.Is(err, controller.ErrInvalidTitle),
		errors.Is(err, controller.ErrInvalidAmount),
		errors.Is(err, controller.ErrInvalidScreen):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		h.Log.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
	}
}

// Amount is a money value sent either as a JSON number or as a string, the
// way form inputs hand it over.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(strings.TrimSpace(string(data)))
	return nil
}
