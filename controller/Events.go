package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/alagaddonjuan/q4icoms/billing"
	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/utils"
)

const eventAck = "Event received."

// USSDEventsCallback receives the out-of-band session lifecycle events. The
// provider retries deliveries it considers failed, so the response is the
// same fixed acknowledgment no matter what happened inside; reconciliation
// outcomes are operator-visible through logs only.
func USSDEventsCallback(c *fiber.Ctx) error {
	type sessionEvent struct {
		SessionId         string `form:"sessionId" json:"sessionId"`
		Status            string `form:"status" json:"status"`
		DurationInSeconds string `form:"durationInSeconds" json:"durationInSeconds"`
		Cost              string `form:"cost" json:"cost"`
	}
	event := sessionEvent{}
	if err := c.BodyParser(&event); err != nil {
		utils.LogMessage("warn", "USSD event: unreadable payload: "+err.Error(), config.ServiceName)
		return c.Status(fiber.StatusOK).SendString(eventAck)
	}

	outcome, tokens, err := ReconcileSession(event.SessionId, event.Status, parseDuration(event.DurationInSeconds), parseProviderCost(event.Cost))
	switch {
	case err != nil:
		utils.LogMessage("error", fmt.Sprintf("USSD event: reconcile failed for session %s: %v", event.SessionId, err), config.ServiceName)
	case outcome == billing.Billed:
		utils.LogMessage("info", fmt.Sprintf("USSD session %s billed %d tokens", event.SessionId, tokens), config.ServiceName)
	case outcome == billing.AlreadyBilled:
		utils.LogMessage("info", fmt.Sprintf("USSD session %s already processed", event.SessionId), config.ServiceName)
	case outcome == billing.SessionNotFound:
		utils.LogMessage("warn", fmt.Sprintf("USSD event for unknown session %s", event.SessionId), config.ServiceName)
	}
	return c.Status(fiber.StatusOK).SendString(eventAck)
}

// ReconcileSession applies one terminal event to the session log and the
// owning wallet, at most once. Non-terminal statuses and blank session ids
// are acknowledged without touching storage.
func ReconcileSession(sessionId string, status string, durationSeconds int64, providerCost float64) (billing.Outcome, int64, error) {
	if sessionId == "" || !billing.IsTerminalStatus(status) {
		return billing.Ignored, 0, nil
	}
	return Stores.Sessions.FinalizeAndBill(ctx, sessionId, durationSeconds, providerCost)
}

func parseDuration(value string) int64 {
	duration, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return duration
}

// parseProviderCost reads the provider's cost field, which arrives either as
// a bare number or prefixed with a currency code ("NGN 1.5000").
func parseProviderCost(value string) float64 {
	fields := strings.Fields(strings.TrimSpace(value))
	if len(fields) == 0 {
		return 0
	}
	cost, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0
	}
	return cost
}
