package app

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"tubequiz/internal/config"
	"tubequiz/internal/domain"
	"tubequiz/internal/handler"
	"tubequiz/internal/middleware"
	"tubequiz/internal/repository"
	"tubequiz/internal/service"
	"tubequiz/internal/validation"
)

// NewHTTPServer builds the fiber app serving the quiz API. Sessions are
// stored in cache, which must not be nil.
func NewHTTPServer(cfg *config.Config, services *Services, cache domain.Cache) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tubequiz",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       int((5 * time.Minute).Seconds()),
	}))

	sessions := service.NewSessionService(
		repository.NewCacheSessionRepository(cache, cfg.Session.TTL),
		services.Grading,
		services.Tutor,
	)

	validator := validation.NewValidator(cfg.MaxUploadBytes())
	handler.RegisterRoutes(app,
		handler.NewSessionHandler(services.Pipeline, sessions, validator, cfg.Server.RequestTimeout),
		handler.NewHealthHandler(cache),
		middleware.NewValidationMiddleware(validator),
	)
	return app
}
