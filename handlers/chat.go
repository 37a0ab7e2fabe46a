package handlers

import (
	"github.com/gofiber/fiber/v2"

	"money-dog-go-be/controller"
	"money-dog-go-be/models"
)

// MessageRequest is the payload for talking to Money.
type MessageRequest struct {
	Text string `json:"text"`
}

// StateResponse is what the avatar and navigation bar need.
type StateResponse struct {
	Mood             models.Mood   `json:"mood"`
	Screen           models.Screen `json:"screen"`
	Sending          bool          `json:"sending"`
	Messages         int           `json:"messages"`
	Goals            int           `json:"goals"`
	DiaryEntries     int           `json:"diary_entries"`
	DiarySuggestions []string      `json:"diary_suggestions"`
}

// ScreenRequest switches the active screen.
type ScreenRequest struct {
	Screen models.Screen `json:"screen"`
}

func (h *Handler) GetState(c *fiber.Ctx, ctl *controller.Controller) error {
	return c.JSON(StateResponse{
		Mood:             ctl.Mood(),
		Screen:           ctl.Screen(),
		Sending:          ctl.Sending(),
		Messages:         len(ctl.Messages()),
		Goals:            len(ctl.Goals()),
		DiaryEntries:     len(ctl.DiaryEntries()),
		DiarySuggestions: controller.DiarySuggestions,
	})
}

func (h *Handler) Navigate(c *fiber.Ctx, ctl *controller.Controller) error {
	var req ScreenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := ctl.Navigate(req.Screen); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"screen": ctl.Screen()})
}

func (h *Handler) ListMessages(c *fiber.Ctx, ctl *controller.Controller) error {
	return c.JSON(fiber.Map{"messages": ctl.Messages()})
}

// PostMessage blocks until Money has answered.
func (h *Handler) PostMessage(c *fiber.Ctx, ctl *controller.Controller) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	reply, err := ctl.PostUserMessage(ctx, req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"reply": reply,
		"mood":  ctl.Mood(),
	})
}
