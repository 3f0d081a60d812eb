// Package notify delivers alert emails over STARTTLS-secured SMTP.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"go.uber.org/zap"
)

// MailConfig holds relay and account settings
type MailConfig struct {
	Host     string
	Port     int
	Login    string
	Password string
	Sender   string
	Receiver string
	Timeout  time.Duration
}

// Mailer sends plain-text messages through an authenticated relay
type Mailer struct {
	cfg    MailConfig
	logger *zap.Logger
}

// NewMailer creates a new mailer
func NewMailer(cfg MailConfig, logger *zap.Logger) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers one message. Failures wrap errs.ErrDelivery.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	if err := m.send(ctx, subject, body); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrDelivery, err)
	}
	m.logger.Info("alert email sent",
		zap.String("receiver", m.cfg.Receiver),
		zap.String("subject", subject),
	)
	return nil
}

func (m *Mailer) send(ctx context.Context, subject, body string) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(m.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := client.Auth(smtp.PlainAuth("", m.cfg.Login, m.cfg.Password, m.cfg.Host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := client.Mail(m.cfg.Sender); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(m.cfg.Receiver); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(ComposeMessage(m.cfg.Sender, m.cfg.Receiver, subject, body)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}

// ComposeMessage renders headers and a UTF-8 plain-text body
func ComposeMessage(sender, receiver, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", sender)
	fmt.Fprintf(&buf, "To: %s\r\n", receiver)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}
