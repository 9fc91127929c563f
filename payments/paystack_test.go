package payments

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestInitializeTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_abc" {
			t.Errorf("authorization = %s", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		payload := map[string]interface{}{}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode request failed: %v", err)
		}
		if payload["email"] != "client@test.local" {
			t.Errorf("email = %v", payload["email"])
		}
		if payload["amount"].(float64) != 50000 {
			t.Errorf("amount = %v", payload["amount"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/abc123",
			"access_code":"abc123","reference":"ref-1"}}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_abc")
	data, err := client.InitializeTransaction(context.Background(), "client@test.local", 50000, "ref-1", "https://gateway.test/dashboard.html")
	if err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if data.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Fatalf("authorization_url = %s", data.AuthorizationURL)
	}
	if data.Reference != "ref-1" {
		t.Fatalf("reference = %s", data.Reference)
	}
}

func TestInitializeTransactionProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer server.Close()

	client := New(server.URL, "sk_test_bad")
	_, err := client.InitializeTransaction(context.Background(), "client@test.local", 50000, "ref-1", "")
	if err == nil {
		t.Fatalf("expected rejection error")
	}
	if !strings.Contains(err.Error(), "Invalid key") {
		t.Fatalf("error should carry the provider message, got: %v", err)
	}
}

func TestWebhookEventDecoding(t *testing.T) {
	raw := `{"event":"charge.success","data":{"reference":"ref-42","amount":50000}}`
	event := WebhookEvent{}
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if event.Event != EventChargeSuccess {
		t.Fatalf("event = %s", event.Event)
	}
	if event.Data.Reference != "ref-42" {
		t.Fatalf("reference = %s", event.Data.Reference)
	}
}
