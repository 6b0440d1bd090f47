package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"EstateHub/config"
	"EstateHub/logging"
)

// Mailer sends transactional mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when SMTP is
// not configured.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled() {
		return logMailer{}
	}
	return &smtpMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := "From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body
	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	logging.FromContext(ctx).Debug("mail sent", logging.Fields{"to": to, "subject": subject})
	return nil
}

type logMailer struct{}

// Send logs the recipient. The body can carry single-use tokens, so it only
// goes to the debug level.
func (logMailer) Send(ctx context.Context, to, subject, body string) error {
	log := logging.FromContext(ctx)
	log.Info("smtp not configured, mail not sent", logging.Fields{"to": to, "subject": subject})
	log.Debug("unsent mail body", logging.Fields{"to": to, "body": body})
	return nil
}

// PasswordResetMail renders the reset message for link.
func PasswordResetMail(name, link string) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("We received a request to reset your EstateHub password.\n")
	fmt.Fprintf(&b, "Open the link below to choose a new one:\n\n%s\n\n", link)
	b.WriteString("If you did not ask for this you can ignore this message.\n")
	return "Reset your EstateHub password", b.String()
}
