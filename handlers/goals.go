package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"money-dog-go-be/controller"
	"money-dog-go-be/models"
)

// GoalRequest represents the payload for creating a dream
type GoalRequest struct {
	Title        string `json:"title"`
	TargetAmount Amount `json:"target_amount"`
	Deadline     string `json:"deadline"`
}

// DepositRequest represents the payload for saving money toward a dream
type DepositRequest struct {
	Amount Amount `json:"amount"`
}

// GoalResponse adds the derived progress fields to a goal.
type GoalResponse struct {
	models.SavingsGoal
	Progress decimal.Decimal `json:"progress"`
	Complete bool            `json:"complete"`
}

func newGoalResponse(g models.SavingsGoal) GoalResponse {
	return GoalResponse{SavingsGoal: g, Progress: g.Progress(), Complete: g.Complete()}
}

func (h *Handler) ListGoals(c *fiber.Ctx, ctl *controller.Controller) error {
	goals := ctl.Goals()
	out := make([]GoalResponse, len(goals))
	for i, g := range goals {
		out[i] = newGoalResponse(g)
	}
	return c.JSON(fiber.Map{"goals": out})
}

func (h *Handler) CreateGoal(c *fiber.Ctx, ctl *controller.Controller) error {
	var req GoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	goal, err := ctl.CreateGoal(c.UserContext(), req.Title, string(req.TargetAmount), req.Deadline)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newGoalResponse(goal))
}

// Deposit answers with celebrate=true only when this deposit completed the goal.
func (h *Handler) Deposit(c *fiber.Ctx, ctl *controller.Controller) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.fail(c, controller.ErrGoalNotFound)
	}

	result, err := ctl.Deposit(c.UserContext(), goalID, string(req.Amount))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"goal":      newGoalResponse(result.Goal),
		"celebrate": result.Completed,
	})
}
