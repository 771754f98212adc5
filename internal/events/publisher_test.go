package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

func TestNewPublisherWithoutBrokers(t *testing.T) {
	if p := NewPublisher(nil, "crisis-events", zerolog.Nop()); p != nil {
		t.Fatal("expected nil publisher without brokers")
	}
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	if err := p.Publish(context.Background(), CrisisEvent{UserID: 1}); err != nil {
		t.Fatalf("publish on nil publisher: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close on nil publisher: %v", err)
	}
}

func TestPublisherBalancerKeepsUserOnOnePartition(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "crisis-events", zerolog.Nop())
	defer p.Close()

	balancer, ok := p.writer.Balancer.(*kafka.Hash)
	if !ok {
		t.Fatalf("expected key-hash balancer, got %T", p.writer.Balancer)
	}

	msg := kafka.Message{Key: []byte("42")}
	partitions := []int{0, 1, 2, 3}
	first := balancer.Balance(msg, partitions...)
	for i := 0; i < 20; i++ {
		if got := balancer.Balance(msg, partitions...); got != first {
			t.Fatalf("same key moved partitions: %d then %d", first, got)
		}
	}
}
