package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/account"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/apperr"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/fees"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/ledger"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/publisher"
)

var (
	accountService *account.Service
	feeService     *fees.Service
	ledgerService  *ledger.Service
)

// Initialize wires the controllers to their services. Must be called once
// before the routes are installed.
func Initialize(db *gorm.DB, pub publisher.Publisher) {
	accountService = account.NewServiceFromDB(db)
	feeService = fees.NewServiceFromDB(db)
	ledgerService = ledger.NewServiceFromDB(db, pub)
}

// kindNames maps service error kinds to the machine-readable error codes in
// API responses.
var kindNames = map[apperr.Kind]string{
	apperr.KindValidation:         "validation",
	apperr.KindNotFound:           "not_found",
	apperr.KindConflict:           "conflict",
	apperr.KindInsufficientBudget: "insufficient_budget",
	apperr.KindInternal:           "internal_server_error",
}

// respondError maps a service error to the API error envelope.
func respondError(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"error":   kindNames[apperr.KindOf(err)],
		"message": err.Error(),
	}
	if budget := apperr.BudgetOf(err); budget != nil {
		body["budget"] = budget
	}
	return c.Status(apperr.StatusCode(err)).JSON(body)
}

// actingUserID reads the already-authenticated principal from the X-User-Id
// header. Authentication itself happens upstream of this service.
func actingUserID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Get("X-User-Id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": "Missing or invalid X-User-Id header",
	})
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s path parameter", name)
	}
	return id, nil
}
