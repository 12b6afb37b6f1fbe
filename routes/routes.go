package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"myjantes-backend/controllers"
	"myjantes-backend/middlewares"
	"myjantes-backend/realtime"
	"myjantes-backend/services"
)

// Register wires all HTTP routes and the websocket push channel.
func Register(app *fiber.App, db *gorm.DB, hub *realtime.Hub, notifier *services.Notifier) {
	auth := controllers.NewAuthController(db)
	service := controllers.NewServiceController(db)
	quote := controllers.NewQuoteController(db, notifier)
	invoice := controllers.NewInvoiceController(db, notifier)
	reservation := controllers.NewReservationController(db, notifier)
	notification := controllers.NewNotificationController(db, notifier)

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", auth.Register)
	api.Post("/login", auth.Login)
	api.Post("/logout", auth.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard for mutating requests
	protected.Use(middlewares.Idempotency(db))

	protected.Get("/auth/user", auth.Me)

	// Catalogue + client-side lifecycle views
	protected.Get("/services", service.List)
	protected.Get("/quotes", quote.List)
	protected.Post("/quotes", quote.Create)
	protected.Get("/invoices", invoice.List)
	protected.Get("/invoices/:id", invoice.Get)
	protected.Get("/reservations", reservation.List)
	protected.Get("/notifications", notification.List)
	protected.Patch("/notifications/:id/read", notification.MarkRead)

	// Staff endpoints
	admin := protected.Group("/admin")
	admin.Use(middlewares.IsAdmin())

	admin.Get("/users", auth.ListUsers)

	admin.Get("/services", service.AdminList)
	admin.Post("/services", service.Create)
	admin.Patch("/services/:id", service.Update)
	admin.Delete("/services/:id", service.Delete)

	admin.Get("/quotes", quote.AdminList)
	admin.Post("/quotes", quote.AdminCreate)
	admin.Patch("/quotes/:id", quote.Update)

	admin.Get("/invoices", invoice.AdminList)
	admin.Post("/invoices", invoice.Create)
	admin.Put("/invoices/:id", invoice.Update)

	admin.Get("/reservations", reservation.AdminList)
	admin.Post("/reservations", reservation.Create)
	admin.Patch("/reservations/:id", reservation.Update)

	// Realtime push channel
	app.Use("/ws", realtime.Upgrade)
	app.Get("/ws", realtime.Handler(hub))
}
