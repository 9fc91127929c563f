package controller

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/menu"
	"github.com/alagaddonjuan/q4icoms/payments"
	"github.com/alagaddonjuan/q4icoms/store"
	"github.com/alagaddonjuan/q4icoms/telco"
)

var Validate = validator.New()
var ctx = context.Background()

var Stores *store.Stores
var Menus *menu.Registry
var Telco *telco.Client
var Payments *payments.Client

var bundle *i18n.Bundle
var localizer *i18n.Localizer

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	// English defaults ship in code so a missing locale file never changes
	// what the provider renders to the end user.
	bundle.AddMessages(language.English,
		&i18n.Message{ID: "service_not_active", Other: "This service code is not active."},
		&i18n.Message{ID: "service_not_configured", Other: "This service is not configured correctly."},
		&i18n.Message{ID: "ussd_system_error", Other: "An error occurred. Please try again."},
		&i18n.Message{ID: "invalid_request", Other: "Invalid request data, missing required fields"},
	)
	for _, path := range []string{"/app/locales/gateway.en.toml", "locales/gateway.en.toml", "../locales/gateway.en.toml"} {
		if _, err := bundle.LoadMessageFile(path); err == nil {
			break
		}
	}
	localizer = i18n.NewLocalizer(bundle, "en")
}

// Setup wires the controller package once at startup. The menu registry is
// built by the caller and passed in by reference; nothing here owns a
// module-level handler table.
func Setup(stores *store.Stores, menus *menu.Registry, telcoClient *telco.Client, paymentsClient *payments.Client) {
	Stores = stores
	Menus = menus
	Telco = telcoClient
	Payments = paymentsClient
}

func ServiceStatusCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": 200, "message": fmt.Sprintf("Welcome to the %s API service. This service is running!", config.ServiceName)})
}
