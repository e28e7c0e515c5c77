package email

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaConfig configures the queue-backed sender and the mail worker
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	Username string
	Password string
}

func (c KafkaConfig) saslEnabled() bool {
	return c.Username != "" && c.Password != ""
}

// KafkaSender publishes messages to a topic; the mail worker delivers them.
// A successful Send means the broker acknowledged the message.
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender creates a KafkaSender
func NewKafkaSender(cfg KafkaConfig) *KafkaSender {
	transport := &kafka.Transport{}
	if cfg.saslEnabled() {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		transport.TLS = &tls.Config{}
	}

	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Send publishes msg keyed by recipient
func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email message: %w", err)
	}

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("publish email message: %w", err)
	}
	return nil
}

// Close flushes and closes the writer
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// NewKafkaReader builds the consumer-group reader used by the mail worker
func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if cfg.saslEnabled() {
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		dialer.TLS = &tls.Config{}
	}

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})
}

// DecodeMessage parses a queued message value
func DecodeMessage(value []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(value, &msg); err != nil {
		return Message{}, fmt.Errorf("decode email message: %w", err)
	}
	return msg, msg.Validate()
}
