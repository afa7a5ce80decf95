package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricewatch/config"
	"pricewatch/models"
)

func TestDispatchSkipsUnconfiguredChannels(t *testing.T) {
	d := NewDispatcher(config.SMTPConfig{}, config.WhatsAppConfig{})

	emailed, messaged := d.Dispatch(&models.NotificationSettings{UserID: 1}, "Echo Dot", "https://www.amazon.com/dp/B08N5WRWNW")
	if emailed || messaged {
		t.Errorf("empty channels must be skipped, got emailed=%v messaged=%v", emailed, messaged)
	}

	emailed, messaged = d.Dispatch(nil, "Echo Dot", "u")
	if emailed || messaged {
		t.Errorf("nil settings must be skipped, got emailed=%v messaged=%v", emailed, messaged)
	}
}

func TestEmailSendRequiresConfig(t *testing.T) {
	s := NewEmailSender(config.SMTPConfig{})
	if err := s.Send("user@example.com", "Echo Dot", "u"); err == nil {
		t.Error("expected error when SMTP is not configured")
	}
}

func TestWhatsAppSend(t *testing.T) {
	var got whatsAppMessage
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWhatsAppSender(config.WhatsAppConfig{
		Token:         "secret",
		PhoneNumberID: "12345",
		APIBaseURL:    srv.URL,
		Timeout:       5 * time.Second,
	})

	if err := s.Send("+15550001111", "Echo Dot", "https://www.amazon.com/dp/B08N5WRWNW"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if got.To != "+15550001111" || got.MessagingProduct != "whatsapp" || got.Type != "text" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestWhatsAppSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewWhatsAppSender(config.WhatsAppConfig{
		Token:         "bad",
		PhoneNumberID: "12345",
		APIBaseURL:    srv.URL,
		Timeout:       5 * time.Second,
	})

	if err := s.Send("+15550001111", "Echo Dot", "u"); err == nil {
		t.Error("expected error for non-2xx API response")
	}
}
