package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"pricewatch/config"
)

// WhatsAppSender delivers alerts through the WhatsApp Cloud API.
type WhatsAppSender struct {
	cfg    config.WhatsAppConfig
	client *http.Client
}

func NewWhatsAppSender(cfg config.WhatsAppConfig) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type whatsAppText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// Send posts a text message to the given phone number.
func (s *WhatsAppSender) Send(phoneNumber, title, url string) error {
	if !s.cfg.IsConfigured() {
		return fmt.Errorf("whatsapp config missing: set WHATSAPP_TOKEN, WHATSAPP_PHONE_NUMBER_ID")
	}

	payload := whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               phoneNumber,
		Type:             "text",
		Text: whatsAppText{
			Body:       fmt.Sprintf("Price drop alert! %s\n%s", title, url),
			PreviewURL: true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", s.cfg.APIBaseURL, s.cfg.PhoneNumberID)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp API error: %d %s", resp.StatusCode, string(detail))
	}
	return nil
}
