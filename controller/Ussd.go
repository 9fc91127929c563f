package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/menu"
	"github.com/alagaddonjuan/q4icoms/store"
	"github.com/alagaddonjuan/q4icoms/utils"
)

// USSDCallback handles one menu turn. The provider posts the session id, the
// dialed service code, and the full accumulated input path; the reply body
// is the literal next screen (CON ...) or session close (END ...).
func USSDCallback(c *fiber.Ctx) error {
	type menuTurnRequest struct {
		SessionId   string `form:"sessionId" validate:"required"`
		ServiceCode string `form:"serviceCode" validate:"required"`
		PhoneNumber string `form:"phoneNumber" validate:"required"`
		NetworkCode string `form:"networkCode"`
		Text        string `form:"text"`
	}
	request := menuTurnRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.USSDResponse(c, "END "+utils.Localize(localizer, "invalid_request", nil))
	}
	if err := Validate.Struct(request); err != nil {
		return utils.USSDResponse(c, "END "+utils.Localize(localizer, "invalid_request", nil))
	}
	reply := processMenuTurn(request.SessionId, request.ServiceCode, request.PhoneNumber, request.NetworkCode, request.Text)
	return utils.USSDResponse(c, reply)
}

// processMenuTurn resolves the tenant, runs the menu program, and persists
// the session log. Every outcome is a terminal or continuing screen; nothing
// here surfaces an error to the provider.
func processMenuTurn(sessionId string, serviceCode string, phoneNumber string, networkCode string, text string) string {
	client, err := Stores.Clients.FindByServiceCode(ctx, serviceCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "END " + utils.Localize(localizer, "service_not_active", nil)
		}
		utils.LogMessage("error", fmt.Sprintf("USSD callback: client lookup failed for %s: %v", serviceCode, err), config.ServiceName)
		return "END " + utils.Localize(localizer, "ussd_system_error", nil)
	}

	// The router is a pure function of its inputs; run it before touching
	// storage so an unconfigured code never leaves a Pending row behind.
	response, err := Menus.Route(serviceCode, text, phoneNumber, *client)
	if err != nil {
		if errors.Is(err, menu.ErrUnknownServiceCode) {
			utils.LogMessage("warn", "USSD callback: no menu program for service code "+serviceCode, config.ServiceName)
			return "END " + utils.Localize(localizer, "service_not_configured", nil)
		}
		utils.LogMessage("error", fmt.Sprintf("USSD callback: route failed for %s: %v", serviceCode, err), config.ServiceName)
		return "END " + utils.Localize(localizer, "ussd_system_error", nil)
	}

	if text == "" {
		err = Stores.Sessions.Begin(ctx, client.Id, sessionId, phoneNumber, networkCode)
	} else {
		err = Stores.Sessions.RecordInput(ctx, sessionId, text)
	}
	if err != nil {
		// A session without a log row can never be billed, so fail the turn
		// rather than serve it for free.
		utils.LogMessage("error", fmt.Sprintf("USSD callback: session log write failed for %s: %v", sessionId, err), config.ServiceName)
		return "END " + utils.Localize(localizer, "ussd_system_error", nil)
	}
	return response.Render()
}
