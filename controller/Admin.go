package controller

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/model"
	"github.com/alagaddonjuan/q4icoms/store"
	"github.com/alagaddonjuan/q4icoms/utils"
)

func ListClients(c *fiber.Ctx) error {
	clients, err := Stores.Clients.List(ctx)
	if err != nil {
		return adminError(c, "ListClients", err)
	}
	return c.Status(fiber.StatusOK).JSON(clients)
}

// CreateClient registers a tenant and returns its generated API key, the
// only time the key is ever shown.
func CreateClient(c *fiber.Ctx) error {
	type createClientRequest struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}
	request := createClientRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Name and email are required.")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Name and a valid email are required.")
	}
	client, err := Stores.Clients.Create(ctx, request.Name, request.Email)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return utils.JsonErrorResponse(c, fiber.StatusConflict, "A client with this email already exists.")
		}
		return adminError(c, "CreateClient", err)
	}
	utils.LogMessage("info", fmt.Sprintf("New client registered: %s", client.Name), config.ServiceName)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"client": client, "api_key": client.ApiKey})
}

func UpdateClient(c *fiber.Ctx) error {
	clientId, err := strconv.ParseInt(c.Params("clientId"), 10, 64)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "A numeric client id is required.")
	}
	type updateClientRequest struct {
		Name        *string `json:"name"`
		ServiceCode *string `json:"ussd_code"`
		SenderId    *string `json:"sender_id"`
	}
	request := updateClientRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "At least one field (name, ussd_code or sender_id) is required to update.")
	}
	if request.Name == nil && request.ServiceCode == nil && request.SenderId == nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "At least one field (name, ussd_code or sender_id) is required to update.")
	}
	if err := Stores.Clients.Update(ctx, clientId, request.Name, request.ServiceCode, request.SenderId); err != nil {
		if errors.Is(err, store.ErrDuplicateServiceCode) {
			return utils.JsonErrorResponse(c, fiber.StatusConflict, "This USSD code is already assigned to another client.")
		}
		if errors.Is(err, store.ErrNotFound) {
			return utils.JsonErrorResponse(c, fiber.StatusNotFound, "Client not found.")
		}
		return adminError(c, "UpdateClient", err)
	}
	utils.LogMessage("info", fmt.Sprintf("Admin updated details for client %d", clientId), config.ServiceName)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Client updated successfully."})
}

// TopUp credits a wallet directly, the admin override for purchases.
func TopUp(c *fiber.Ctx) error {
	type topUpRequest struct {
		ClientId int64 `json:"clientId" validate:"required"`
		Amount   int64 `json:"amount" validate:"required,gt=0"`
	}
	request := topUpRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Valid clientId and a positive amount are required.")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Valid clientId and a positive amount are required.")
	}
	if err := Stores.Wallets.Adjust(ctx, request.ClientId, request.Amount); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.JsonErrorResponse(c, fiber.StatusNotFound, "Client not found.")
		}
		return adminError(c, "TopUp", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Successfully topped up client %d with %d tokens.", request.ClientId, request.Amount)})
}

// SetPricing upserts the per-network tokens-per-interval rate used when
// billing USSD sessions.
func SetPricing(c *fiber.Ctx) error {
	type setPricingRequest struct {
		NetworkCode       string `json:"network_code" validate:"required"`
		TokensPerInterval int64  `json:"tokens_per_interval" validate:"required,gt=0"`
	}
	request := setPricingRequest{}
	if err := c.BodyParser(&request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Valid network_code and a positive tokens_per_interval are required.")
	}
	if err := Validate.Struct(request); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Valid network_code and a positive tokens_per_interval are required.")
	}
	if err := Stores.Pricing.Upsert(ctx, model.PricingEntry{
		NetworkCode:       request.NetworkCode,
		TokensPerInterval: request.TokensPerInterval,
	}); err != nil {
		return adminError(c, "SetPricing", err)
	}
	utils.LogMessage("info", fmt.Sprintf("USSD pricing for network %s set to %d tokens per interval", request.NetworkCode, request.TokensPerInterval), config.ServiceName)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Pricing updated successfully."})
}

func AdminLogs(c *fiber.Ctx) error {
	smsLogs, err := Stores.Messages.ListAllSms(ctx)
	if err != nil {
		return adminError(c, "AdminLogs sms", err)
	}
	airtimeLogs, err := Stores.Messages.ListAllAirtime(ctx)
	if err != nil {
		return adminError(c, "AdminLogs airtime", err)
	}
	ussdLogs, err := Stores.Sessions.ListAll(ctx)
	if err != nil {
		return adminError(c, "AdminLogs ussd", err)
	}
	transactions, err := Stores.Transactions.ListAll(ctx)
	if err != nil {
		return adminError(c, "AdminLogs transactions", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"smsLogs":      smsLogs,
		"airtimeLogs":  airtimeLogs,
		"ussdLogs":     ussdLogs,
		"transactions": transactions,
	})
}

// ExportLogs streams one log table as a workbook: ?type=sms|airtime|ussd|transactions.
func ExportLogs(c *fiber.Ctx) error {
	logType := c.Query("type", "ussd")
	var data []byte
	var err error
	switch logType {
	case "sms":
		data, err = exportSmsLogs()
	case "airtime":
		data, err = exportAirtimeLogs()
	case "ussd":
		data, err = exportUssdLogs()
	case "transactions":
		data, err = exportTransactions()
	default:
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Unknown log type: "+logType)
	}
	if err != nil {
		return adminError(c, "ExportLogs "+logType, err)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_logs.xlsx", logType))
	return c.Status(fiber.StatusOK).Send(data)
}

func exportSmsLogs() ([]byte, error) {
	logs, err := Stores.Messages.ListAllSms(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, []interface{}{entry.Id, entry.ClientName, entry.Recipient, entry.Status, entry.Cost, entry.LoggedAt.Format("2006-01-02 15:04:05")})
	}
	return utils.ExportToExcel("SMS Logs", []string{"ID", "Client", "Recipient", "Status", "Cost", "Logged At"}, rows)
}

func exportAirtimeLogs() ([]byte, error) {
	logs, err := Stores.Messages.ListAllAirtime(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, []interface{}{entry.Id, entry.ClientName, entry.PhoneNumber, entry.Amount, entry.Status, entry.LoggedAt.Format("2006-01-02 15:04:05")})
	}
	return utils.ExportToExcel("Airtime Logs", []string{"ID", "Client", "Phone", "Amount", "Status", "Logged At"}, rows)
}

func exportUssdLogs() ([]byte, error) {
	logs, err := Stores.Sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(logs))
	for _, entry := range logs {
		duration, price := int64(0), int64(0)
		if entry.DurationSeconds != nil {
			duration = *entry.DurationSeconds
		}
		if entry.ClientPrice != nil {
			price = *entry.ClientPrice
		}
		rows = append(rows, []interface{}{entry.Id, entry.ClientName, entry.SessionId, entry.PhoneNumber, entry.NetworkCode, entry.Status, duration, price, entry.LoggedAt.Format("2006-01-02 15:04:05")})
	}
	return utils.ExportToExcel("USSD Logs", []string{"ID", "Client", "Session", "Phone", "Network", "Status", "Duration (s)", "Tokens", "Logged At"}, rows)
}

func exportTransactions() ([]byte, error) {
	transactions, err := Stores.Transactions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(transactions))
	for _, entry := range transactions {
		rows = append(rows, []interface{}{entry.Id, entry.ClientName, entry.Reference, entry.Amount, entry.TokensPurchased, entry.Status, entry.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	return utils.ExportToExcel("Transactions", []string{"ID", "Client", "Reference", "Amount", "Tokens", "Status", "Created At"}, rows)
}

// SessionDetails proxies the provider's record of one session for support
// investigations.
func SessionDetails(c *fiber.Ctx) error {
	sessionId := c.Params("sessionId")
	details, err := Telco.SessionDetails(ctx, sessionId)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch session details from the provider.", utils.Logger{
			LogLevel: utils.ERROR, Message: "SessionDetails: " + err.Error(), ServiceName: config.ServiceName})
	}
	return c.Status(fiber.StatusOK).JSON(details)
}

func adminError(c *fiber.Ctx, what string, err error) error {
	return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "", utils.Logger{
		LogLevel: utils.ERROR, Message: what + " failed: " + err.Error(), ServiceName: config.ServiceName})
}
