package handlers

import (
	"github.com/gofiber/fiber/v2"

	"money-dog-go-be/controller"
)

// DiaryRequest is a new success diary line.
type DiaryRequest struct {
	Content string `json:"content"`
}

func (h *Handler) ListDiary(c *fiber.Ctx, ctl *controller.Controller) error {
	return c.JSON(fiber.Map{"entries": ctl.DiaryEntries()})
}

// SaveDiaryEntry waits for Money's comment before answering.
func (h *Handler) SaveDiaryEntry(c *fiber.Ctx, ctl *controller.Controller) error {
	var req DiaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	entry, err := ctl.SaveDiaryEntry(ctx, req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"entry": entry,
		"mood":  ctl.Mood(),
	})
}
