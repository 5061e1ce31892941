package api

import (
	"github.com/gofiber/fiber/v2"

	"vidscope/internal/api/handlers"
	"vidscope/internal/config"
	"vidscope/internal/store"
)

// NewServer builds the fiber app serving the analysis API.
// db may be nil when persistence is disabled; run lookups then 404.
func NewServer(cfg *config.Config, db *store.Store) *fiber.App {
	app := fiber.New()

	handlers.RegisterHealthRoutes(app)
	handlers.RegisterRunRoutes(app, cfg, db)

	return app
}
