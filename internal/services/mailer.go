package services

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"devcamper/internal/config"
	"devcamper/internal/utils"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Text    string
	// Link is the action URL embedded in Text, if any.
	Link string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends plain-text mail through an authenticated SMTP relay.
type SMTPMailer struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

func (m SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	var a smtp.Auth
	if m.Username != "" {
		a = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, a, m.FromEmail, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m SMTPMailer) compose(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.FromName, m.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Text)
	return []byte(b.String())
}

type mailgunClient interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunMailer sends through the Mailgun HTTP API.
type MailgunMailer struct {
	client    mailgunClient
	fromName  string
	fromEmail string
	log       logrus.FieldLogger
}

func NewMailgunMailer(cfg config.MailgunConfig, fromName, fromEmail string, log logrus.FieldLogger) *MailgunMailer {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return &MailgunMailer{client: mg, fromName: fromName, fromEmail: fromEmail, log: log}
}

func (m *MailgunMailer) Send(ctx context.Context, msg Message) error {
	from := fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	resp, id, err := m.client.Send(ctx, m.client.NewMessage(from, msg.Subject, msg.Text, msg.To))
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	utils.LogEvent(ctx, m.log, "mail", "send", fmt.Sprintf("to=%s id=%s resp=%q", msg.To, id, resp))
	return nil
}

// LogMailer only logs outgoing mail. Used when no mail transport is configured.
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	utils.LogEvent(ctx, m.Log, "mail", "send", fmt.Sprintf("to=%s subject=%q", msg.To, msg.Subject))
	if msg.Link != "" && m.Log != nil {
		m.Log.WithFields(logrus.Fields{
			"module":     "mail",
			"request_id": utils.RequestID(ctx),
			"to":         msg.To,
			"link":       msg.Link,
		}).Debug("mail not delivered; link follows")
	}
	return nil
}
