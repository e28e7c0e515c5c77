// Package mailworker delivers the emails queued on Kafka by email.KafkaSender.
package mailworker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/yigit/careernest/internal/pkg/email"
	"github.com/yigit/careernest/internal/pkg/metrics"
)

// Reader is the consumer-group API of *kafka.Reader the worker uses
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config tunes delivery retries
type Config struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Worker reads queued messages and hands them to a delivering sender. A
// message is committed once it is delivered, undecodable, or out of attempts.
type Worker struct {
	reader  Reader
	sender  email.Sender
	cfg     Config
	metrics metrics.Recorder
	logger  zerolog.Logger
}

// New creates a Worker
func New(reader Reader, sender email.Sender, cfg Config, recorder metrics.Recorder, logger zerolog.Logger) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Worker{reader: reader, sender: sender, cfg: cfg, metrics: recorder, logger: logger}
}

// Run consumes until ctx is cancelled or the reader fails
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("Mail worker started")
	defer w.logger.Info().Msg("Mail worker stopped")

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		w.handle(ctx, msg)
		if ctx.Err() != nil {
			return nil
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit email message")
		}
	}
}

// handle delivers one queued message, retrying transient failures
func (w *Worker) handle(ctx context.Context, km kafka.Message) {
	msg, err := email.DecodeMessage(km.Value)
	if err != nil {
		w.logger.Error().Err(err).Int64("offset", km.Offset).Msg("Dropping undecodable email message")
		return
	}

	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		err = w.sender.Send(ctx, msg)
		if err == nil {
			w.logger.Info().Str("to", msg.To).Str("kind", msg.Kind).Int("attempt", attempt).Msg("Email delivered")
			return
		}

		w.logger.Warn().Err(err).Str("to", msg.To).Int("attempt", attempt).Msg("Email delivery failed")
		if attempt == w.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.cfg.Backoff * time.Duration(attempt)):
		}
	}

	w.metrics.EmailFailed(msg.Kind)
	w.logger.Error().Err(err).Str("to", msg.To).Str("kind", msg.Kind).Msg("Giving up on email message")
}
