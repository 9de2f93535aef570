// Package mailer delivers one-time verification codes to the vault owner.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/dmitrijs2005/keyfold/internal/logging"
)

// Mailer sends a verification code to the given address.
type Mailer interface {
	SendCode(ctx context.Context, to string, code string, expires time.Time) error
	Enabled() bool
}

// Config holds SMTP settings. An empty Host disables SMTP delivery;
// codes are then printed to the local console so the vault stays usable
// without a mail server.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Security string // "starttls" (default), "ssl" or "none"
}

// New picks the delivery mechanism for cfg.
func New(cfg Config, logger logging.Logger, out io.Writer) Mailer {
	ctx := context.Background()

	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))
	if cfg.Security == "" {
		cfg.Security = "starttls"
	}
	if cfg.Host == "" || cfg.From == "" {
		logger.Info(ctx, "smtp not configured, verification codes will be printed to the console")
		return &consoleMailer{out: out}
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	logger.Info(ctx, "mailer enabled",
		"host", cfg.Host, "port", cfg.Port, "security", cfg.Security, "user", MaskAddress(cfg.Username))
	return &smtpMailer{cfg: cfg, logger: logger}
}

// consoleMailer writes the code to out instead of sending mail.
type consoleMailer struct {
	out io.Writer
}

func (c *consoleMailer) Enabled() bool { return false }

func (c *consoleMailer) SendCode(_ context.Context, to string, code string, expires time.Time) error {
	_, err := fmt.Fprintf(c.out, "Verification code for %s (valid until %s): %s\n",
		to, expires.UTC().Format(time.RFC3339), code)
	return err
}

type smtpMailer struct {
	cfg    Config
	logger logging.Logger
}

func (m *smtpMailer) Enabled() bool { return true }

func (m *smtpMailer) SendCode(ctx context.Context, to string, code string, expires time.Time) error {
	body := fmt.Sprintf("Your verification code is: %s\n\nIt expires at %s UTC. If you did not request it, ignore this message.",
		code, expires.UTC().Format(time.RFC3339))
	msg := message(m.cfg.From, to, "Your Keyfold verification code", body)

	if err := m.send(ctx, to, msg); err != nil {
		return fmt.Errorf("failed to send code to %s: %w", MaskAddress(to), err)
	}
	return nil
}

func (m *smtpMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	var (
		conn net.Conn
		err  error
	)
	switch m.cfg.Security {
	case "ssl", "smtps":
		d := tls.Dialer{Config: &tls.Config{ServerName: m.cfg.Host}}
		conn, err = d.DialContext(ctx, "tcp", addr)
	default:
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if m.cfg.Security != "ssl" && m.cfg.Security != "smtps" && m.cfg.Security != "none" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return err
			}
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func message(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// MaskAddress hides most of an e-mail address for logs: "a***@example.com".
// Codes and addresses never appear in logs unmasked.
func MaskAddress(addr string) string {
	if addr == "" {
		return "(none)"
	}
	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		if len(addr) <= 2 {
			return "***"
		}
		return addr[:1] + "***" + addr[len(addr)-1:]
	}
	return addr[:1] + "***" + addr[at:]
}
