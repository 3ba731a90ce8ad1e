// Package mailer sends plain text email through SMTP or writes it to the log.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"strings"
	"time"
)

// ErrNoRecipients is returned when a message has an empty To list.
var ErrNoRecipients = errors.New("mailer: no recipients")

// Message is a single plain text email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Bytes renders msg as an RFC 5322 message with CRLF line endings.
func (m Message) Bytes(now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		if v != "" {
			b.WriteString(k + ": " + v + "\r\n")
		}
	}
	header("From", m.From)
	header("To", strings.Join(m.To, ", "))
	header("Reply-To", m.ReplyTo)
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if _, err := mail.ParseAddress(m.From); err != nil {
		return fmt.Errorf("mailer: invalid from address %q: %w", m.From, err)
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("mailer: invalid recipient %q: %w", to, err)
		}
	}
	return nil
}

// address strips a display name, "Site <a@b.c>" becomes "a@b.c".
func address(s string) string {
	if a, err := mail.ParseAddress(s); err == nil {
		return a.Address
	}
	return s
}

// Console logs messages instead of sending them. Used in development.
type Console struct {
	Logger *slog.Logger
}

func (c Console) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("email", "from", msg.From, "to", strings.Join(msg.To, ","), "subject", msg.Subject, "body", msg.Body)
	return nil
}
