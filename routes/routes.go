package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/striolo29112007-arch/nakama-game/controllers"
	"github.com/striolo29112007-arch/nakama-game/shared"
)

func Setup(app *fiber.App, state *shared.State) {
	app.Use(shared.GetRequestLoggingMiddleware())
	app.Use(shared.GetRateLimitMiddleware(10, 20))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(200).JSON(fiber.Map{
			"message": "nakama is alive",
		})
	})

	lobbyController := controllers.NewLobbyController(state)
	app.Post("/api", lobbyController.HandleAction)
}
