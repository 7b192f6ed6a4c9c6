package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// LockAmountRequest is the payload for reserving budget for a challenge.
type LockAmountRequest struct {
	ChallengeID string  `json:"challenge_id" validate:"required"`
	LockAmount  float64 `json:"lock_amount" validate:"gte=0"`
}

// ConsumedAmountRequest is the payload for charging actually spent budget.
type ConsumedAmountRequest struct {
	ChallengeID    string  `json:"challenge_id" validate:"required"`
	ConsumedAmount float64 `json:"consumed_amount" validate:"gte=0"`
	Markup         float64 `json:"markup" validate:"gte=0"`
}

// HandleLockAmount reserves budget for a challenge against a billing account.
func HandleLockAmount(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req LockAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": "Invalid request body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": err.Error()})
	}

	fiberlog.Debugf("lock amount, billing account %d, challenge %s, amount %.2f", accountID, req.ChallengeID, req.LockAmount)

	applied, err := ledgerService.LockAmount(accountID, req.ChallengeID, req.LockAmount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"locked_amount": applied})
}

// HandleConsumeAmount charges consumed budget for a challenge against a
// billing account.
func HandleConsumeAmount(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req ConsumedAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": "Invalid request body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": err.Error()})
	}

	fiberlog.Debugf("consume amount, billing account %d, challenge %s, amount %.2f", accountID, req.ChallengeID, req.ConsumedAmount)

	applied, err := ledgerService.ConsumeAmount(accountID, req.ChallengeID, req.ConsumedAmount, req.Markup)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"consumed_amount": applied})
}
