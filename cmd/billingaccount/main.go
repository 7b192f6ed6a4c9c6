package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/topcoder-platform/tc-billing-account-service/app/controllers"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/cache"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/database"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/env"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/publisher"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8080")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	controllers.Initialize(database.GetDB(), publisher.NewSQSPublisher())

	app := fiber.New()

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
