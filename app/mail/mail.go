package mail

import (
	"fmt"
	"net/smtp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Send(msg Message) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// New returns an SMTP mailer, or a LogMailer when no SMTP host is configured.
func New(config SMTPConfig, logger zerolog.Logger) Mailer {
	if config.Host == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(config, logger)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	config SMTPConfig
	logger zerolog.Logger
	send   sendFunc
}

// NewSMTPMailer creates an SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{config: config, logger: logger, send: smtp.SendMail}
}

// Send delivers msg, authenticating only when credentials are configured
func (m *SMTPMailer) Send(msg Message) error {
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := m.config.Host + ":" + strconv.Itoa(m.config.Port)
	if err := m.send(addr, auth, m.config.From, []string{msg.To}, m.compose(msg)); err != nil {
		m.logger.Error().Err(err).Str("server", addr).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

func (m *SMTPMailer) compose(msg Message) []byte {
	headers := map[string]string{
		"From":         m.config.From,
		"To":           msg.To,
		"Subject":      msg.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(msg Message) error {
	m.logger.Warn().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("SMTP not configured - email not sent")
	return nil
}

// Outbox keeps sent messages in memory
type Outbox struct {
	mu       sync.Mutex
	messages []Message
}

func (o *Outbox) Send(msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}
