package appkafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"example.com/clyqfeed/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// PostPublisher announces posts appended to the feed.
type PostPublisher interface {
	Publish(ctx context.Context, post models.Post) error
	Close() error
}

// KafkaPublisher writes post_created events through a KafkaWriter.
type KafkaPublisher struct {
	writer KafkaWriter
	now    func() time.Time
}

func NewKafkaPublisher(w KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

// NewPostEvent wraps post in an event with a time-based (v1) id, so the archive can
// cluster on it.
func NewPostEvent(post models.Post, at time.Time) (models.PostEvent, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return models.PostEvent{}, fmt.Errorf("generate event id: %w", err)
	}
	return models.PostEvent{
		EventID:   id.String(),
		Type:      models.PostEventType,
		Post:      post,
		EmittedAt: at.UTC(),
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, post models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ev, err := NewPostEvent(post, p.now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal post event: %w", err)
	}

	// Create Kafka message for post creation event.
	msg := kafka.Message{
		Key:   []byte(models.PostEventType),
		Value: data,
	}
	if err := p.writer.WriteMessages(msg); err != nil {
		return fmt.Errorf("write post event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, post models.Post) error { return nil }

func (NopPublisher) Close() error { return nil }

// DecodePostEvent parses a message value written by KafkaPublisher.
func DecodePostEvent(data []byte) (models.PostEvent, error) {
	var ev models.PostEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return models.PostEvent{}, fmt.Errorf("decode post event: %w", err)
	}
	if ev.Type != "" && ev.Type != models.PostEventType {
		return models.PostEvent{}, fmt.Errorf("unexpected event type %q", ev.Type)
	}
	return ev, nil
}
