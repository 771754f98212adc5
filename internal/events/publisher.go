package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// CrisisEvent is the payload published when an escalation crosses the
// severe threshold, for downstream care-team tooling to consume.
type CrisisEvent struct {
	UserID    int64     `json:"user_id"`
	SessionID string    `json:"session_id"`
	Level     string    `json:"level"`
	Triggers  []string  `json:"triggers"`
	HandoffID string    `json:"handoff_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes crisis events to Kafka. A nil Publisher is a no-op, so
// deployments without brokers configured skip publishing entirely.
type Publisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewPublisher(brokers []string, topic string, log zerolog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	// Hash balancing sends every message with the same key to the same
	// partition, which keeps one user's events ordered for consumers.
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &Publisher{writer: writer, log: log}
}

func (p *Publisher) Publish(ctx context.Context, event CrisisEvent) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// Keyed by user so a consumer sees one user's events in order.
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: payload,
	})
	if err != nil {
		p.log.Error().Err(err).Int64("user_id", event.UserID).Msg("failed to publish crisis event")
	}
	return err
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
