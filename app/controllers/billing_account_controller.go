package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
)

// BillingAccountRequest is the payload for creating or updating a billing
// account.
type BillingAccountRequest struct {
	Name               string     `json:"name" validate:"required,max=150"`
	Status             string     `json:"status" validate:"required"`
	BudgetAmount       *float64   `json:"budget_amount"`
	PaymentTermsID     int64      `json:"payment_terms_id"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	SalesTax           float64    `json:"sales_tax" validate:"gte=0"`
	PoNumber           string     `json:"po_number"`
	Description        string     `json:"description"`
	SubscriptionNumber string     `json:"subscription_number"`
	CompanyID          int64      `json:"company_id" validate:"required,gt=0"`
	ClientID           int64      `json:"client_id" validate:"required,gt=0"`
	ManualPrizeSetting bool       `json:"manual_prize_setting"`
	Billable           bool       `json:"billable"`
}

func (r *BillingAccountRequest) toModel() *models.BillingAccount {
	return &models.BillingAccount{
		Name:               r.Name,
		BudgetAmount:       r.BudgetAmount,
		PaymentTermsID:     r.PaymentTermsID,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		SalesTax:           r.SalesTax,
		PoNumber:           r.PoNumber,
		Description:        r.Description,
		SubscriptionNumber: r.SubscriptionNumber,
		CompanyID:          r.CompanyID,
		ClientID:           r.ClientID,
		ManualPrizeSetting: r.ManualPrizeSetting,
		Billable:           r.Billable,
	}
}

func parseAccountRequest(c *fiber.Ctx) (*BillingAccountRequest, error) {
	var req BillingAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// HandleSearchBillingAccounts returns a page of all billing accounts.
func HandleSearchBillingAccounts(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}

	page, err := accountService.SearchBillingAccounts(c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// HandleSearchMyBillingAccounts returns the accounts the acting user belongs
// to.
func HandleSearchMyBillingAccounts(c *fiber.Ctx) error {
	userID, ok := actingUserID(c)
	if !ok {
		return unauthorized(c)
	}

	page, err := accountService.SearchMyBillingAccounts(userID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// HandleGetBillingAccount returns one billing account by id.
func HandleGetBillingAccount(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	acct, err := accountService.GetBillingAccount(accountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(accountResponse(acct))
}

// HandleCreateBillingAccount creates a billing account.
func HandleCreateBillingAccount(c *fiber.Ctx) error {
	userID, ok := actingUserID(c)
	if !ok {
		return unauthorized(c)
	}

	req, err := parseAccountRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": err.Error()})
	}

	created, err := accountService.CreateBillingAccount(req.toModel(), req.Status, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(accountResponse(created))
}

// HandleUpdateBillingAccount updates a billing account.
func HandleUpdateBillingAccount(c *fiber.Ctx) error {
	userID, ok := actingUserID(c)
	if !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req, err := parseAccountRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation", "message": err.Error()})
	}

	acct := req.toModel()
	acct.ID = accountID
	updated, err := accountService.UpdateBillingAccount(acct, req.Status, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(accountResponse(updated))
}

// HandleGetBillingAccountUsers returns a page of an account's users.
func HandleGetBillingAccountUsers(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	page, err := accountService.GetBillingAccountUsers(accountID, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// HandleAddUserToBillingAccount attaches a user to a billing account.
func HandleAddUserToBillingAccount(c *fiber.Ctx) error {
	actorID, ok := actingUserID(c)
	if !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}

	acct, err := accountService.AddUserToBillingAccount(accountID, userID, actorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(accountResponse(acct))
}

// HandleRemoveUserFromBillingAccount detaches a user from a billing account.
func HandleRemoveUserFromBillingAccount(c *fiber.Ctx) error {
	if _, ok := actingUserID(c); !ok {
		return unauthorized(c)
	}
	accountID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}

	if err := accountService.RemoveUserFromBillingAccount(accountID, userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// accountResponse renders a billing account with its derived status name.
func accountResponse(acct *models.BillingAccount) fiber.Map {
	return fiber.Map{
		"id":                   acct.ID,
		"name":                 acct.Name,
		"status":               acct.Status(),
		"budget_amount":        acct.BudgetAmount,
		"payment_terms_id":     acct.PaymentTermsID,
		"start_date":           acct.StartDate,
		"end_date":             acct.EndDate,
		"sales_tax":            acct.SalesTax,
		"po_number":            acct.PoNumber,
		"description":          acct.Description,
		"subscription_number":  acct.SubscriptionNumber,
		"company_id":           acct.CompanyID,
		"client_id":            acct.ClientID,
		"manual_prize_setting": acct.ManualPrizeSetting,
		"billable":             acct.Billable,
		"created_at":           acct.CreatedAt,
		"updated_at":           acct.UpdatedAt,
	}
}
