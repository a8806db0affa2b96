package mail

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaConfig holds the broker settings for the kafka transport.
type KafkaConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
	From     string
	FromName string
}

// Event is the payload published for every outbound message.
type Event struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	From      string    `json:"from"`
	FromName  string    `json:"from_name"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes mail events to a topic; a separate worker performs delivery.
type KafkaSender struct {
	writer   messageWriter
	from     string
	fromName string
	now      func() time.Time
}

// NewKafkaSender creates a KafkaSender. SASL/PLAIN over TLS is used when a username is set.
func NewKafkaSender(cfg KafkaConfig) *KafkaSender {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if cfg.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return newKafkaSender(w, cfg.From, cfg.FromName)
}

func newKafkaSender(w messageWriter, from, fromName string) *KafkaSender {
	return &KafkaSender{writer: w, from: from, fromName: fromName, now: time.Now}
}

// Send publishes the message keyed by recipient so that mails to one address stay ordered.
func (s *KafkaSender) Send(ctx context.Context, to, subject, html string) error {
	if err := validateRecipient(to); err != nil {
		return err
	}
	event := Event{
		ID:        uuid.NewString(),
		To:        to,
		From:      s.from,
		FromName:  s.fromName,
		Subject:   subject,
		HTML:      html,
		CreatedAt: s.now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode mail event: %w", err)
	}

	if err := s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(to), Value: value, Time: event.CreatedAt}); err != nil {
		return fmt.Errorf("failed to publish mail event: %w", err)
	}
	slog.Info("mail queued", "transport", "kafka", "event_id", event.ID)
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
