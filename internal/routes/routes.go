package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/posbridge/internal/config"
	"github.com/example/posbridge/internal/handlers"
	"github.com/example/posbridge/internal/middleware"
	"github.com/example/posbridge/internal/services"
	"github.com/example/posbridge/internal/storage"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	store := storage.NewGormStore(db)
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	gateway := services.NewPinVandaagService(cfg.PinVandaagBaseURL, 0)

	terminalHandler := handlers.NewTerminalHandler(store, gateway, telegramService)
	webhookHandler := handlers.NewWebhookHandler()
	authHandler := handlers.NewAuthHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api")

	// POS extension routes
	terminal := api.Group("/terminal")
	terminal.Post("/start", terminalHandler.StartTransaction)
	terminal.Post("/status", terminalHandler.GetTransactionStatus)
	terminal.Get("/transactions", terminalHandler.ListTransactions)

	// Shopify compliance webhooks
	api.Post("/webhooks/shopify",
		middleware.ShopifyWebhookMiddleware(cfg.ShopifyAPISecret),
		webhookHandler.HandleShopifyWebhook)

	// Admin routes
	api.Post("/auth/login", authHandler.Login)

	admin := api.Group("/admin", middleware.AuthMiddleware(cfg))
	admin.Get("/terminal-links", adminHandler.ListTerminalLinks)
	admin.Post("/terminal-links", adminHandler.CreateTerminalLink)
	admin.Put("/terminal-links/:id", adminHandler.UpdateTerminalLink)
	admin.Delete("/terminal-links/:id", adminHandler.DeleteTerminalLink)
	admin.Get("/transactions", adminHandler.ListAllTransactions)
}
