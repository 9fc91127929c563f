package routes

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alagaddonjuan/q4icoms/controller"
)

func InitRoutes() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Provider callbacks: no auth, the provider holds no credentials.
	app.Post("/ussd_callback", controller.USSDCallback)
	app.Post("/ussd_events_callback", controller.USSDEventsCallback)
	app.Post("/billing/webhook", controller.PaystackWebhook)

	v1 := app.Group("/ussd/api/v1/")
	v1.All("/service-status", controller.ServiceStatusCheck)

	api := app.Group("/api", controller.RequireClient)
	api.Get("/dashboard", controller.Dashboard)
	api.Post("/sendsms", controller.SendSMS)
	api.Post("/sendairtime", controller.SendAirtime)
	api.Post("/billing/initialize", controller.InitializePayment)

	admin := api.Group("/admin", controller.RequireAdmin)
	admin.Get("/clients", controller.ListClients)
	admin.Post("/clients", controller.CreateClient)
	admin.Put("/clients/:clientId", controller.UpdateClient)
	admin.Post("/topup", controller.TopUp)
	admin.Post("/pricing", controller.SetPricing)
	admin.Get("/logs", controller.AdminLogs)
	admin.Get("/logs/export", controller.ExportLogs)
	admin.Get("/ussd-session/:sessionId", controller.SessionDetails)

	return app
}
