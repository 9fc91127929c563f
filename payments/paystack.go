// Package payments is the Paystack REST client used to start token
// purchases. Confirmation arrives on the webhook, handled by the controller.
package payments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func New(baseURL string, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`
}

// InitializeTransaction starts a charge. amountKobo is the NGN amount in
// kobo, the provider's smallest unit.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amountKobo int64, reference string, callbackURL string) (*InitializeData, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"email":        email,
		"amount":       amountKobo,
		"reference":    reference,
		"callback_url": callbackURL,
	})
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build payment request failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.secretKey)
	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read payment response failed: %w", err)
	}
	decoded := initializeResponse{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode payment response failed: %w", err)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices || !decoded.Status {
		message := strings.TrimSpace(decoded.Message)
		if message == "" {
			message = fmt.Sprintf("payment initialization failed with status %d", response.StatusCode)
		}
		return nil, fmt.Errorf("%s", message)
	}
	return &decoded.Data, nil
}

// WebhookEvent is the provider's event envelope. Only charge.success is
// acted on; everything else is acknowledged and dropped.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

const EventChargeSuccess = "charge.success"
