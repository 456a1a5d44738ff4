package handler

import (
	"github.com/gofiber/fiber/v2"

	"tubequiz/internal/middleware"
)

// RegisterRoutes mounts the API, health and metrics endpoints on app.
func RegisterRoutes(app *fiber.App, sessions *SessionHandler, health *HealthHandler, vm *middleware.ValidationMiddleware) {
	app.Get("/healthz", health.Check)
	app.Get("/metrics", middleware.MetricsHandler())

	api := app.Group("/api")
	api.Post("/summaries", sessions.Summarize)

	sessionGroup := api.Group("/sessions")
	sessionGroup.Post("/", sessions.CreateFromURL)
	sessionGroup.Post("/upload", sessions.CreateFromUpload)
	sessionGroup.Get("/:id", vm.ValidateSessionID(), sessions.GetSession)
	sessionGroup.Delete("/:id", vm.ValidateSessionID(), sessions.DeleteSession)
	sessionGroup.Post("/:id/answers", vm.ValidateSessionID(), sessions.SubmitAnswers)
	sessionGroup.Post("/:id/ask", vm.ValidateSessionID(), sessions.Ask)
}
