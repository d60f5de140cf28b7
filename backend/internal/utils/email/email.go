// Package email sends plain-text mail over SMTP with implicit TLS (port 465)
// or STARTTLS (any other port).
package email

import (
	"crypto/tls"
	"fmt"
	"math/rand"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/deskfolio/deskfolio/shared/config"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
	"github.com/deskfolio/deskfolio/shared/logger"
)

type Email struct {
	config *config.Email
	auth   smtp.Auth
	now    func() time.Time
}

func New(config *config.Email) *Email {
	return &Email{
		config: config,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.SMTPServer),
		now:    time.Now,
	}
}

// IsCorrect reports malformed addresses as validation errors.
func (e *Email) IsCorrect(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return internal_errors.Validation("Invalid email address")
	}
	return nil
}

func (e *Email) Send(recipientEmail, subject, body string) error {
	msg := e.buildMessage(recipientEmail, subject, body)
	address := net.JoinHostPort(e.config.SMTPServer, fmt.Sprint(e.config.SMTPPort))

	if e.config.SMTPPort == 465 {
		return e.sendImplicitTLS(address, recipientEmail, msg)
	}
	return e.sendSTARTTLS(address, recipientEmail, msg)
}

func (e *Email) timeout() time.Duration {
	if e.config.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(e.config.Timeout) * time.Second
}

func (e *Email) sendImplicitTLS(address, recipientEmail string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: e.config.SMTPServer}
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: e.timeout()}, "tcp", address, tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s (implicit TLS): %w", address, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.SMTPServer)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()
	return e.sendViaClient(client, recipientEmail, msg)
}

func (e *Email) sendSTARTTLS(address, recipientEmail string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, e.timeout())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", address, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.SMTPServer)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: e.config.SMTPServer}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	return e.sendViaClient(client, recipientEmail, msg)
}

func (e *Email) sendViaClient(client *smtp.Client, recipientEmail string, msg []byte) error {
	if err := client.Auth(e.auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(e.config.Username); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(recipientEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}

// senderDomain is the host part of the sender address, used for Message-ID.
func (e *Email) senderDomain() string {
	if _, host, ok := strings.Cut(e.config.Username, "@"); ok && host != "" {
		return host
	}
	return "localhost"
}

func (e *Email) buildMessage(recipient, subject, body string) []byte {
	now := e.now()
	msgID := fmt.Sprintf("<%d.%d@%s>", now.UnixNano(), rand.Int63(), e.senderDomain())

	return fmt.Appendf(nil,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		msgID, now.Format(time.RFC1123Z), recipient,
		mime.QEncoding.Encode("utf-8", e.config.SenderName), e.config.Username,
		mime.QEncoding.Encode("utf-8", subject), body,
	)
}

// LogSender stands in for SMTP when no server is configured. It logs the
// recipient and subject and drops the body.
type LogSender struct{}

func (LogSender) IsCorrect(email string) error {
	return (&Email{}).IsCorrect(email)
}

func (LogSender) Send(recipientEmail, subject, body string) error {
	logger.Component("email").Warn("smtp not configured, message dropped", "to", recipientEmail, "subject", subject)
	return nil
}
