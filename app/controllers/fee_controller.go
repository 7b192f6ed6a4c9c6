package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/fees"
)

// HandleGetFees returns the fee schedule of a billing account.
func HandleGetFees(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	schedule, err := feeService.GetFees(accountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(schedule)
}

// HandleCreateFees establishes the initial fee schedule for a billing
// account.
func HandleCreateFees(c *fiber.Ctx) error {
	userID, ok := actingUserID(c)
	if !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var schedule fees.BillingAccountFees
	if err := c.BodyParser(&schedule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": "Invalid request body"})
	}

	fiberlog.Debugf("create fees, billing account %d, fixed=%t", accountID, schedule.ChallengeFeeFixed)

	created, err := feeService.CreateFees(accountID, &schedule, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateFees reconciles a resubmitted fee schedule for a billing
// account.
func HandleUpdateFees(c *fiber.Ctx) error {
	userID, ok := actingUserID(c)
	if !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var schedule fees.BillingAccountFees
	if err := c.BodyParser(&schedule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": "Invalid request body"})
	}

	fiberlog.Debugf("update fees, billing account %d, fixed=%t", accountID, schedule.ChallengeFeeFixed)

	updated, err := feeService.UpdateFees(accountID, &schedule, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}
