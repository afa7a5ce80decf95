package notify

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"pricewatch/config"
)

// EmailSender sends alert mail over SMTP. Port 465 speaks SMTPS,
// anything else upgrades with STARTTLS.
type EmailSender struct {
	cfg config.SMTPConfig
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send delivers the price-drop alert to one recipient.
func (s *EmailSender) Send(to, title, url string) error {
	if !s.cfg.IsConfigured() {
		return fmt.Errorf("email config missing: set EMAIL_ID, EMAIL_PASS, SMTP_SERVER, SMTP_PORT")
	}

	subject := "Price Drop Alert!"
	body := fmt.Sprintf("Price of %s has dropped!\n\nCheck it here: %s", title, url)
	msg := s.buildMessage(to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if s.cfg.Port == 465 {
		return s.sendSMTPS(addr, auth, to, msg)
	}
	return s.sendSTARTTLS(addr, auth, to, msg)
}

func (s *EmailSender) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: PriceWatch <%s>\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func (s *EmailSender) sendSMTPS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to dial SMTPS: %v", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %v", err)
	}
	defer client.Close()

	return s.transmit(client, auth, to, msg)
}

func (s *EmailSender) sendSTARTTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP: %v", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("STARTTLS failed: %v", err)
		}
	}

	return s.transmit(client, auth, to, msg)
}

func (s *EmailSender) transmit(client *smtp.Client, auth smtp.Auth, to string, msg []byte) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %v", err)
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %v", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %v", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %v", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %v", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %v", err)
	}
	return client.Quit()
}
