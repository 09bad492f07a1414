package appkafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"example.com/clyqfeed/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPost = models.Post{
	ID:        3,
	Content:   "hello",
	Author:    "You",
	Timestamp: models.NewTimestamp(time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)),
}

func TestKafkaPublisher_Publish(t *testing.T) {
	mk := &MockKafka{}
	p := NewKafkaPublisher(mk)

	require.NoError(t, p.Publish(context.Background(), testPost))

	written := mk.Written()
	require.Len(t, written, 1)
	assert.Equal(t, []byte(models.PostEventType), written[0].Key)

	ev, err := DecodePostEvent(written[0].Value)
	require.NoError(t, err)
	assert.Equal(t, models.PostEventType, ev.Type)
	assert.Equal(t, testPost, ev.Post)

	id, err := uuid.Parse(ev.EventID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(1), id.Version())
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&MockKafkaFail{})

	err := p.Publish(context.Background(), testPost)
	assert.ErrorContains(t, err, "write post event")
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	mk := &MockKafka{}
	p := NewKafkaPublisher(mk)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, testPost), context.Canceled)
	assert.Empty(t, mk.Written())
}

func TestKafkaPublisher_Close(t *testing.T) {
	mk := &MockKafka{}
	require.NoError(t, NewKafkaPublisher(mk).Close())
	assert.True(t, mk.Closed)
}

func TestNopPublisher(t *testing.T) {
	var p PostPublisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), testPost))
	assert.NoError(t, p.Close())
}

func TestDecodePostEvent(t *testing.T) {
	_, err := DecodePostEvent([]byte("{invalid-json}"))
	assert.Error(t, err)

	other, _ := json.Marshal(models.PostEvent{Type: "post_liked"})
	_, err = DecodePostEvent(other)
	assert.ErrorContains(t, err, "unexpected event type")

	// events without a type are accepted
	legacy, _ := json.Marshal(models.PostEvent{Post: testPost})
	ev, err := DecodePostEvent(legacy)
	require.NoError(t, err)
	assert.Equal(t, 3, ev.Post.ID)
}

func TestMockKafka_Loopback(t *testing.T) {
	mk := &MockKafka{Loopback: true}
	require.NoError(t, mk.WriteMessages(kafka.Message{Value: []byte("v")}))

	msg, err := mk.FetchMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), msg.Value)
	assert.Equal(t, 1, mk.Fetched())

	_, err = mk.FetchMessage(context.Background())
	assert.Error(t, err)

	assert.Empty(t, mk.Committed())
	require.NoError(t, mk.CommitMessages(context.Background(), msg))
	assert.Len(t, mk.Committed(), 1)
}

func TestKafkaConfig_Defaults(t *testing.T) {
	c := KafkaConfig{}.withDefaults()

	assert.Equal(t, []string{"localhost:9092"}, c.Brokers)
	assert.Equal(t, 10*time.Second, c.WriteTimeout)
	assert.Equal(t, 10*time.Second, c.ReadTimeout)
}
