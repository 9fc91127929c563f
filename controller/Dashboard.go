package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/utils"
)

const recentLogLimit = 5

// Dashboard returns the tenant's usage statistics and its most recent
// activity of each kind.
func Dashboard(c *fiber.Ctx) error {
	client := CurrentClient(c)

	smsCount, err := Stores.Messages.CountSms(ctx, client.Id)
	if err != nil {
		return dashboardError(c, "sms count", err)
	}
	airtimeCount, err := Stores.Messages.CountAirtime(ctx, client.Id)
	if err != nil {
		return dashboardError(c, "airtime count", err)
	}
	tokensSpent, err := Stores.Sessions.TokensSpent(ctx, client.Id)
	if err != nil {
		return dashboardError(c, "ussd spend", err)
	}

	smsLogs, err := Stores.Messages.RecentSms(ctx, client.Id, recentLogLimit)
	if err != nil {
		return dashboardError(c, "sms logs", err)
	}
	airtimeLogs, err := Stores.Messages.RecentAirtime(ctx, client.Id, recentLogLimit)
	if err != nil {
		return dashboardError(c, "airtime logs", err)
	}
	ussdLogs, err := Stores.Sessions.Recent(ctx, client.Id, recentLogLimit)
	if err != nil {
		return dashboardError(c, "ussd logs", err)
	}
	transactions, err := Stores.Transactions.Recent(ctx, client.Id, recentLogLimit)
	if err != nil {
		return dashboardError(c, "transactions", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"client": client,
		"stats": fiber.Map{
			"totalSmsSent":         smsCount,
			"totalAirtimeSent":     airtimeCount,
			"totalUssdTokensSpent": tokensSpent,
		},
		"sms_logs":     smsLogs,
		"airtime_logs": airtimeLogs,
		"ussd_logs":    ussdLogs,
		"transactions": transactions,
	})
}

func dashboardError(c *fiber.Ctx, what string, err error) error {
	return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
		LogLevel: utils.ERROR, Message: "Dashboard: " + what + " failed: " + err.Error(), ServiceName: config.ServiceName})
}
