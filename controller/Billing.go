package controller

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/payments"
	"github.com/alagaddonjuan/q4icoms/utils"
)

// InitializePayment starts a token purchase: a Pending transaction row keyed
// by a fresh reference, then a provider charge the caller completes in the
// browser. Tokens only land on the wallet when the webhook confirms the
// reference.
func InitializePayment(c *fiber.Ctx) error {
	client := CurrentClient(c)
	type initializeRequest struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	request := initializeRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "A valid amount is required.")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "A valid amount is required.")
	}

	reference := uuid.NewString()
	tokensPurchased := int64(math.Floor(request.Amount * float64(config.Billing.NgnToTokenRate)))
	if err := Stores.Transactions.CreatePending(ctx, client.Id, reference, request.Amount, tokensPurchased); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "InitializePayment: create pending failed: " + err.Error(), ServiceName: config.ServiceName})
	}

	// Provider wants the amount in kobo.
	data, err := Payments.InitializeTransaction(ctx, client.Email, int64(math.Round(request.Amount*100)), reference,
		viper.GetString("app_url")+"/dashboard.html")
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Failed to start payment process.", utils.Logger{
			LogLevel: utils.ERROR, Message: "InitializePayment: provider initialize failed: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.Status(fiber.StatusOK).JSON(data)
}

// PaystackWebhook confirms charges. The provider retries non-200 responses,
// so this always acknowledges; the Pending -> Success guard in the store
// makes a replayed charge.success credit nothing.
func PaystackWebhook(c *fiber.Ctx) error {
	event := payments.WebhookEvent{}
	if err := c.BodyParser(&event); err != nil {
		utils.LogMessage("warn", "PaystackWebhook: unreadable payload: "+err.Error(), config.ServiceName)
		return c.SendStatus(fiber.StatusOK)
	}
	if event.Event != payments.EventChargeSuccess || event.Data.Reference == "" {
		return c.SendStatus(fiber.StatusOK)
	}
	credited, err := Stores.Transactions.ConfirmAndCredit(ctx, event.Data.Reference)
	if err != nil {
		utils.LogMessage("error", "PaystackWebhook: credit failed for reference "+event.Data.Reference+": "+err.Error(), config.ServiceName)
	} else if credited {
		utils.LogMessage("info", fmt.Sprintf("Tokens credited for transaction: %s", event.Data.Reference), config.ServiceName)
	}
	return c.SendStatus(fiber.StatusOK)
}
