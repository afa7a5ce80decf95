// Package notify delivers price-drop alerts over the configured
// channels. Every send is best-effort: failures are logged and
// reported as false, never raised, and one channel's failure does not
// stop another's attempt.
package notify

import (
	"log"

	"pricewatch/config"
	"pricewatch/models"
)

// Dispatcher fans an alert out to the user's configured channels.
type Dispatcher struct {
	email    *EmailSender
	whatsapp *WhatsAppSender
}

// NewDispatcher builds a dispatcher from the channel configs.
func NewDispatcher(smtpCfg config.SMTPConfig, waCfg config.WhatsAppConfig) *Dispatcher {
	return &Dispatcher{
		email:    NewEmailSender(smtpCfg),
		whatsapp: NewWhatsAppSender(waCfg),
	}
}

// SendEmail attempts the email channel. Returns true only on
// successful handoff to the SMTP server.
func (d *Dispatcher) SendEmail(to, title, url string) bool {
	if err := d.email.Send(to, title, url); err != nil {
		log.Printf("Email error for %s: %v", title, err)
		return false
	}
	log.Printf("Email sent for %s", title)
	return true
}

// SendMessage attempts the WhatsApp channel.
func (d *Dispatcher) SendMessage(phoneNumber, title, url string) bool {
	if err := d.whatsapp.Send(phoneNumber, title, url); err != nil {
		log.Printf("WhatsApp error for %s: %v", title, err)
		return false
	}
	log.Printf("WhatsApp message sent for %s", title)
	return true
}

// Dispatch tries every channel the settings enable, independently.
// An absent address or number just skips that channel.
func (d *Dispatcher) Dispatch(settings *models.NotificationSettings, title, url string) (emailed, messaged bool) {
	if settings == nil {
		return false, false
	}
	if settings.Email != "" {
		emailed = d.SendEmail(settings.Email, title, url)
	}
	if settings.PhoneNumber != "" {
		messaged = d.SendMessage(settings.PhoneNumber, title, url)
	}
	return emailed, messaged
}
