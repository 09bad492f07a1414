package appkafka

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MockKafka records written messages and serves a fetch queue.
// With Loopback set, written messages are also queued for FetchMessage.
type MockKafka struct {
	mu                sync.Mutex
	WrittenMessages   []kafka.Message // stores messages written via WriteMessages
	ReadMessages      []kafka.Message // queue of messages to be fetched via FetchMessage
	CommittedMessages []kafka.Message // messages acknowledged via CommitMessages
	Loopback          bool
	ShouldFail        bool // flag to simulate failures during write or read operations
	Closed            bool
	fetched           int
}

// WriteMessages simulates writing to Kafka.
func (m *MockKafka) WriteMessages(messages ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return errors.New("mock kafka write failed")
	}
	m.WrittenMessages = append(m.WrittenMessages, messages...)
	if m.Loopback {
		m.ReadMessages = append(m.ReadMessages, messages...)
	}
	return nil
}

// FetchMessage pops the next queued message.
func (m *MockKafka) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return kafka.Message{}, errors.New("mock kafka read failed")
	}
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(m.ReadMessages) == 0 {
		return kafka.Message{}, errors.New("no messages")
	}
	// Take the first message from the queue and remove it
	msg := m.ReadMessages[0]
	m.ReadMessages = m.ReadMessages[1:]
	m.fetched++
	return msg, nil
}

// CommitMessages records msgs as processed.
func (m *MockKafka) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return errors.New("mock kafka commit failed")
	}
	m.CommittedMessages = append(m.CommittedMessages, msgs...)
	return nil
}

// Written returns a copy of the written messages.
func (m *MockKafka) Written() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.WrittenMessages...)
}

// Committed returns a copy of the committed messages.
func (m *MockKafka) Committed() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.CommittedMessages...)
}

// Fetched returns how many messages were handed out by FetchMessage.
func (m *MockKafka) Fetched() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetched
}

func (m *MockKafka) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}

// MockKafkaFail always fails.
type MockKafkaFail struct{}

func (m *MockKafkaFail) WriteMessages(messages ...kafka.Message) error {
	return errors.New("mock kafka write failed")
}

func (m *MockKafkaFail) FetchMessage(ctx context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("mock kafka read failed")
}

func (m *MockKafkaFail) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return errors.New("mock kafka commit failed")
}

func (m *MockKafkaFail) Close() error { return nil }
