package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/apperr"
)

func TestActingUserID(t *testing.T) {
	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		id, ok := actingUserID(c)
		if !ok {
			return unauthorized(c)
		}
		return c.JSON(fiber.Map{"user_id": id})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid id", "132456", fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"not a number", "abc", fiber.StatusUnauthorized},
		{"zero", "0", fiber.StatusUnauthorized},
		{"negative", "-3", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.header != "" {
				req.Header.Set("X-User-Id", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestPathID(t *testing.T) {
	app := fiber.New()
	app.Get("/accounts/:id", func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/accounts/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/accounts/not-a-number", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRespondErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return respondError(c, apperr.InsufficientBudget("Budget exceeded", 100, 41, 60))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Budget  *struct {
			BudgetAmount    float64 `json:"budget_amount"`
			RequestedAmount float64 `json:"requested_amount"`
			CurrentSum      float64 `json:"current_sum"`
		} `json:"budget"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "insufficient_budget", body.Error)
	assert.Equal(t, "Budget exceeded", body.Message)
	require.NotNil(t, body.Budget)
	assert.Equal(t, float64(100), body.Budget.BudgetAmount)
	assert.Equal(t, float64(41), body.Budget.RequestedAmount)
	assert.Equal(t, float64(60), body.Budget.CurrentSum)
}

func TestRespondErrorNotFound(t *testing.T) {
	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return respondError(c, apperr.NotFound("billing account 9 not found"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
