package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/model"
	"github.com/alagaddonjuan/q4icoms/store"
	"github.com/alagaddonjuan/q4icoms/utils"
)

const clientLocal = "client"

// RequireClient authenticates /api requests by API key. Login, passwords,
// and sessions are not this service's business; every caller is a machine
// holding its tenant key.
func RequireClient(c *fiber.Ctx) error {
	apiKey := c.Get("x-api-key")
	if apiKey == "" {
		return utils.JsonErrorResponse(c, fiber.StatusUnauthorized, "An API key is required.")
	}
	client, err := Stores.Clients.FindByApiKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.JsonErrorResponse(c, fiber.StatusUnauthorized, "Invalid API key.")
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "RequireClient: lookup failed: " + err.Error(), ServiceName: config.ServiceName})
	}
	c.Locals(clientLocal, client)
	return c.Next()
}

// RequireAdmin gates the admin group.
func RequireAdmin(c *fiber.Ctx) error {
	client := CurrentClient(c)
	if client == nil || !client.IsAdmin {
		return utils.JsonErrorResponse(c, fiber.StatusForbidden, "Forbidden: Requires admin access.")
	}
	return c.Next()
}

// CurrentClient returns the authenticated tenant set by RequireClient.
func CurrentClient(c *fiber.Ctx) *model.Client {
	client, _ := c.Locals(clientLocal).(*model.Client)
	return client
}
