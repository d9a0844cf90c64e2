package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrEmptyRecipient = errors.New("mail: empty recipient")

// Sender delivers a single plain text message.
type Sender interface {
	Send(recipient, subject, body string) error
}

// DefaultSMTPTimeout bounds a whole delivery when no timeout is configured.
const DefaultSMTPTimeout = 10 * time.Second

type SMTPSender struct {
	addr    string
	host    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
	now     func() time.Time
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender authenticates with PLAIN auth when a username is given.
// timeout covers dialing and the whole SMTP conversation.
func NewSMTPSender(addr, username, password, from string, timeout time.Duration) (*SMTPSender, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp address %q: %w", addr, err)
	}
	if timeout <= 0 {
		timeout = DefaultSMTPTimeout
	}
	s := &SMTPSender{addr: addr, host: host, from: from, timeout: timeout, now: time.Now}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s, nil
}

func (s *SMTPSender) Send(recipient, subject, body string) error {
	if recipient == "" {
		return ErrEmptyRecipient
	}
	msg := buildMessage(s.from, recipient, subject, body, s.now())
	if err := s.deliver(recipient, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}

// deliver runs the conversation smtp.SendMail would, on a connection
// with a deadline so a stalled server cannot hold the caller.
func (s *SMTPSender) deliver(recipient string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", s.addr, s.timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.auth != nil {
		if ok, _ := client.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		if err := client.Auth(s.auth); err != nil {
			return err
		}
	}

	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(recipient); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(from, to, subject, body string, date time.Time) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", stripCRLF(subject)))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", date.Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	msg.WriteString("\r\n")

	return msg.String()
}

func stripCRLF(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}

// LogSender writes messages to the log instead of a mail server. It is
// used when no SMTP server is configured.
type LogSender struct {
	logger *zap.Logger
}

var _ Sender = (*LogSender)(nil)

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(recipient, subject, body string) error {
	if recipient == "" {
		return ErrEmptyRecipient
	}
	s.logger.Info("mail",
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
