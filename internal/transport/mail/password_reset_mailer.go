package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

var ErrNotConfigured = errors.New("mailer missing configuration")

const resetSubject = "Your FitCity password reset code"

func resetBody(maskedEmail, code string) string {
	return fmt.Sprintf(
		"A password reset was requested for %s.\n\nUse the following code to reset your password: %s\n\nThe code expires shortly and can be used once. If you did not request this, ignore this email.",
		maskedEmail, code,
	)
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers reset codes through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string

	send sendMailFunc
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, maskedEmail, code string) error {
	if m == nil || m.host == "" || m.port == "" || m.from == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", email))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", resetSubject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(strings.ReplaceAll(resetBody(maskedEmail, code), "\n", "\r\n"))
	message.WriteString("\r\n")

	addr := net.JoinHostPort(m.host, m.port)
	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	// net/smtp has no context support; the send keeps running in the
	// background if ctx fires first.
	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.from, []string{email}, []byte(message.String()))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
