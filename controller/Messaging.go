package controller

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/model"
	"github.com/alagaddonjuan/q4icoms/store"
	"github.com/alagaddonjuan/q4icoms/telco"
	"github.com/alagaddonjuan/q4icoms/utils"
)

// SendSMS bills per accepted recipient at the configured token price. The
// balance is pre-checked for the full batch; the debit itself still refuses
// to overdraw if a concurrent spend got there first.
func SendSMS(c *fiber.Ctx) error {
	client := CurrentClient(c)
	type sendSmsRequest struct {
		To      string `json:"to" validate:"required"`
		Message string `json:"message" validate:"required"`
	}
	request := sendSmsRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "A recipient list and a message are required.")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "A recipient list and a message are required.")
	}
	recipients := []string{}
	for _, line := range strings.Split(request.To, "\n") {
		if number := strings.TrimSpace(line); number != "" {
			recipients = append(recipients, number)
		}
	}
	if len(recipients) == 0 {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide at least one valid recipient number.")
	}

	totalCost := int64(len(recipients)) * config.Billing.SmsTokenCost
	balance, err := Stores.Wallets.Balance(ctx, client.Id)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "SendSMS: balance read failed: " + err.Error(), ServiceName: config.ServiceName})
	}
	if balance < totalCost {
		return utils.JsonErrorResponse(c, fiber.StatusPaymentRequired,
			fmt.Sprintf("Insufficient token balance. You need %d tokens for this send, but you only have %d.", totalCost, balance))
	}
	if client.SenderId == nil || *client.SenderId == "" {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "No Sender ID has been approved for your account. Please contact support.")
	}

	result, err := Telco.SendSMS(ctx, *client.SenderId, recipients, request.Message)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "SendSMS: provider send failed: " + err.Error(), ServiceName: config.ServiceName})
	}

	delivered := int64(0)
	for _, recipient := range result.SMSMessageData.Recipients {
		status := "FAILED"
		cost := int64(0)
		if recipient.Delivered() {
			status = "SENT"
			cost = config.Billing.SmsTokenCost
			delivered++
		}
		if err := Stores.Messages.LogSms(ctx, model.SmsLog{
			ClientId:  client.Id,
			Recipient: recipient.Number,
			Message:   request.Message,
			MessageId: recipient.MessageId,
			Status:    status,
			Cost:      cost,
		}); err != nil {
			utils.LogMessage("error", "SendSMS: log write failed: "+err.Error(), config.ServiceName)
		}
	}
	if delivered == 0 {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Message failed to send. Please check the recipient number.")
	}
	if err := Stores.Wallets.Adjust(ctx, client.Id, -(delivered * config.Billing.SmsTokenCost)); err != nil {
		if errors.Is(err, store.ErrInsufficientBalance) {
			return utils.JsonErrorResponse(c, fiber.StatusPaymentRequired, "Insufficient token balance.")
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "SendSMS: debit failed: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// SendAirtime disburses airtime at one token per NGN, rounded up.
func SendAirtime(c *fiber.Ctx) error {
	client := CurrentClient(c)
	type sendAirtimeRequest struct {
		PhoneNumber string  `json:"phoneNumber" validate:"required"`
		Amount      float64 `json:"amount" validate:"required,gt=0"`
	}
	request := sendAirtimeRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Valid phoneNumber and a positive amount are required.")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Valid phoneNumber and a positive amount are required.")
	}

	tokenCost := int64(math.Ceil(request.Amount))
	balance, err := Stores.Wallets.Balance(ctx, client.Id)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "SendAirtime: balance read failed: " + err.Error(), ServiceName: config.ServiceName})
	}
	if balance < tokenCost {
		return utils.JsonErrorResponse(c, fiber.StatusPaymentRequired,
			fmt.Sprintf("Insufficient token balance. You need %d tokens for this transaction, but you only have %d.", tokenCost, balance))
	}

	result, err := Telco.SendAirtime(ctx, []telco.AirtimeRecipient{{
		PhoneNumber:  request.PhoneNumber,
		CurrencyCode: "NGN",
		Amount:       fmt.Sprintf("%.2f", request.Amount),
	}})
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
			LogLevel: utils.ERROR, Message: "SendAirtime: provider send failed: " + err.Error(), ServiceName: config.ServiceName})
	}

	if len(result.Responses) > 0 {
		response := result.Responses[0]
		if response.Status == "Sent" || response.Status == "Success" {
			if err := Stores.Wallets.Adjust(ctx, client.Id, -tokenCost); err != nil {
				utils.LogMessage("error", "SendAirtime: debit failed: "+err.Error(), config.ServiceName)
			}
			if err := Stores.Messages.LogAirtime(ctx, model.AirtimeLog{
				ClientId:    client.Id,
				PhoneNumber: request.PhoneNumber,
				Amount:      fmt.Sprintf("NGN %.2f", request.Amount),
				RequestId:   response.RequestId,
				Status:      response.Status,
			}); err != nil {
				utils.LogMessage("error", "SendAirtime: log write failed: "+err.Error(), config.ServiceName)
			}
			utils.LogMessage("info", fmt.Sprintf("Airtime sent and client %d billed %d tokens", client.Id, tokenCost), config.ServiceName)
		}
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
