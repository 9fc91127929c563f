// Package telco is the REST client for the telecom provider: bulk SMS,
// airtime disbursement, and the USSD session-detail lookup. The USSD
// callback protocol itself is inbound and lives in the controller.
package telco

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type Client struct {
	baseURL  string
	username string
	apiKey   string
	http     *http.Client
}

func New(baseURL string, username string, apiKey string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Recipient is the per-number delivery report of one SMS send.
type Recipient struct {
	Number     string `json:"number"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	MessageId  string `json:"messageId"`
	Cost       string `json:"cost"`
}

type SMSMessageData struct {
	Message    string      `json:"Message"`
	Recipients []Recipient `json:"Recipients"`
}

type SMSResponse struct {
	SMSMessageData SMSMessageData `json:"SMSMessageData"`
}

// Delivered reports whether the provider accepted the message for this
// recipient. Accepted message ids carry the provider's ATX prefix.
func (r Recipient) Delivered() bool {
	return strings.HasPrefix(r.MessageId, "ATX") || r.Status == "Success"
}

// SendSMS posts one message to many recipients using the client's approved
// sender id.
func (c *Client) SendSMS(ctx context.Context, from string, to []string, message string) (*SMSResponse, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("to", strings.Join(to, ","))
	form.Set("message", message)
	if from != "" {
		form.Set("from", from)
	}
	body, err := c.post(ctx, "/version1/messaging", "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return nil, err
	}
	response := &SMSResponse{}
	if err := json.Unmarshal(body, response); err != nil {
		return nil, fmt.Errorf("decode sms response failed: %w", err)
	}
	return response, nil
}

type AirtimeRecipient struct {
	PhoneNumber  string `json:"phoneNumber"`
	CurrencyCode string `json:"currencyCode"`
	Amount       string `json:"amount"`
}

type AirtimeEntry struct {
	PhoneNumber  string `json:"phoneNumber"`
	Amount       string `json:"amount"`
	Discount     string `json:"discount"`
	Status       string `json:"status"`
	RequestId    string `json:"requestId"`
	ErrorMessage string `json:"errorMessage"`
}

type AirtimeResponse struct {
	NumSent      int            `json:"numSent"`
	TotalAmount  string         `json:"totalAmount"`
	ErrorMessage string         `json:"errorMessage"`
	Responses    []AirtimeEntry `json:"responses"`
}

// SendAirtime disburses airtime to the given recipients.
func (c *Client) SendAirtime(ctx context.Context, recipients []AirtimeRecipient) (*AirtimeResponse, error) {
	recipientsJson, err := json.Marshal(recipients)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("recipients", string(recipientsJson))
	body, err := c.post(ctx, "/version1/airtime/send", "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return nil, err
	}
	response := &AirtimeResponse{}
	if err := json.Unmarshal(body, response); err != nil {
		return nil, fmt.Errorf("decode airtime response failed: %w", err)
	}
	return response, nil
}

// SessionDetails fetches the provider-side record of one USSD session.
func (c *Client) SessionDetails(ctx context.Context, sessionId string) (map[string]interface{}, error) {
	payload, err := json.Marshal(map[string]string{"username": c.username, "sessionId": sessionId})
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, "/ussd/sessions/query", "application/json", payload)
	if err != nil {
		return nil, err
	}
	details := map[string]interface{}{}
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("decode session details failed: %w", err)
	}
	return details, nil
}

func (c *Client) post(ctx context.Context, path string, contentType string, payload []byte) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build provider request failed: %w", err)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("apiKey", c.apiKey)
	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("provider request to %s failed: %w", path, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response failed: %w", err)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("provider request to %s failed with status %d: %s", path, response.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
