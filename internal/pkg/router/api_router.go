package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/topcoder-platform/tc-billing-account-service/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	v1 := api.Group("/v1")

	accounts := v1.Group("/billing-accounts")
	accounts.Get("/", controllers.HandleSearchBillingAccounts)
	accounts.Post("/", controllers.HandleCreateBillingAccount)
	accounts.Get("/me", controllers.HandleSearchMyBillingAccounts)
	accounts.Get("/:id", controllers.HandleGetBillingAccount)
	accounts.Patch("/:id", controllers.HandleUpdateBillingAccount)

	accounts.Get("/:id/users", controllers.HandleGetBillingAccountUsers)
	accounts.Post("/:id/users/:userId", controllers.HandleAddUserToBillingAccount)
	accounts.Delete("/:id/users/:userId", controllers.HandleRemoveUserFromBillingAccount)

	accounts.Get("/:id/fees", controllers.HandleGetFees)
	accounts.Post("/:id/fees", controllers.HandleCreateFees)
	accounts.Patch("/:id/fees", controllers.HandleUpdateFees)

	accounts.Patch("/:id/lock-amount", controllers.HandleLockAmount)
	accounts.Patch("/:id/consume-amount", controllers.HandleConsumeAmount)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
