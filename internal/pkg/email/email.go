package email

//go:generate mockgen -source=email.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a rendered email ready for delivery
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	// Kind labels the message for logs and metrics, e.g. "college_verification"
	Kind string `json:"kind"`
}

// Validate checks the message has a deliverable recipient and content
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return errors.New("invalid recipient address")
	}
	if strings.TrimSpace(m.Subject) == "" || strings.TrimSpace(m.HTML) == "" {
		return errors.New("subject and body are required")
	}
	return nil
}

// Sender delivers a message or hands it to something that will
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of sending them. It is the development driver.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Warn().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("kind", msg.Kind).
		Str("body", msg.HTML).
		Msg("Email driver is 'log' - message not delivered")
	return nil
}
