// Package mailer sends HTML email over SMTP and renders the signature
// request message.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"time"

	"DR-SIGN/internal/config"
)

var ErrNotConfigured = errors.New("missing SMTP configuration")

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers through an authenticated SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
	send     sendFunc
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.host == "" || m.port == "" || m.from == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := m.send(m.host+":"+m.port, auth, m.from, []string{msg.To}, BuildMessage(m.from, msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

// BuildMessage composes the RFC 5322 message for an HTML body. The subject is
// Q-encoded so accented text survives.
func BuildMessage(from string, msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return b.Bytes()
}

var signRequestTemplate = template.Must(template.New("sign_request").Parse(`<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Helvetica, Arial, sans-serif; color: #1f2933;">
  <p>Bonjour {{.CustomerName}},</p>
  <p>{{if .OrganizationName}}{{.OrganizationName}} vous invite{{else}}Vous êtes invité(e){{end}} à signer électroniquement votre contrat n° <strong>{{.ContractNumber}}</strong>.</p>
  <p style="margin: 24px 0;">
    <a href="{{.URL}}" style="background: #2680c2; color: #ffffff; padding: 12px 20px; border-radius: 6px; text-decoration: none;">Consulter et signer le contrat</a>
  </p>
  <p>Ce lien est personnel et expire le {{.ExpiresAt}}.</p>
  <p style="font-size: 12px; color: #52606d;">Si le bouton ne fonctionne pas, copiez ce lien dans votre navigateur : {{.URL}}</p>
</body>
</html>`))

type SignRequest struct {
	CustomerName     string
	OrganizationName string
	ContractNumber   string
	URL              string
	ExpiresAt        string
}

// SignRequestMessage renders the email inviting a customer to sign.
func SignRequestMessage(to string, data SignRequest) (Message, error) {
	var body bytes.Buffer
	if err := signRequestTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to render sign request email: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Signature de votre contrat n° %s", data.ContractNumber),
		HTML:    body.String(),
	}, nil
}

// FormatExpiry renders an expiry instant for the email body.
func FormatExpiry(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02/01/2006 à 15:04")
}
