package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"example.com/clyqfeed/internal/models"
)

// MockArchive simulates the Cassandra archive for testing.
type MockArchive struct {
	mu         sync.Mutex
	Rows       []models.ArchivedPost // newest first
	ShouldFail bool                  // flag to simulate failures
	Delay      time.Duration         // simulated write latency
	Closed     bool
}

// NewMock initializes a new mock archive
func NewMock() *MockArchive {
	return &MockArchive{}
}

func (m *MockArchive) ArchivePost(ctx context.Context, ev models.PostEvent) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return errors.New("mock: archive post failed")
	}
	row := models.ArchivedPost{
		EventID:    ev.EventID,
		PostID:     ev.Post.ID,
		Author:     ev.Post.Author,
		Content:    ev.Post.Content,
		Likes:      ev.Post.Likes,
		CreatedAt:  ev.Post.Timestamp.Time,
		ArchivedAt: time.Now().UTC(),
	}

	// same event id overwrites, like a Cassandra upsert
	for i, r := range m.Rows {
		if r.EventID != "" && r.EventID == row.EventID {
			m.Rows[i] = row
			return nil
		}
	}
	m.Rows = append([]models.ArchivedPost{row}, m.Rows...)
	return nil
}

func (m *MockArchive) RecentArchived(ctx context.Context, limit int) ([]models.ArchivedPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return nil, errors.New("mock: recent archived failed")
	}
	if limit < 0 {
		limit = 0
	}
	if len(m.Rows) > limit {
		return append([]models.ArchivedPost(nil), m.Rows[:limit]...), nil
	}
	return append([]models.ArchivedPost(nil), m.Rows...), nil
}

func (m *MockArchive) ArchivedByAuthor(ctx context.Context, author string, limit int) ([]models.ArchivedPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return nil, errors.New("mock: archived by author failed")
	}
	var res []models.ArchivedPost
	for _, r := range m.Rows {
		if r.Author == author && len(res) < limit {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *MockArchive) Close() {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}

// Len returns the number of archived rows.
func (m *MockArchive) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Rows)
}

// ---------------------------------------------
// MockArchiveFail always returns errors for negative tests
type MockArchiveFail struct{}

func (m *MockArchiveFail) ArchivePost(ctx context.Context, ev models.PostEvent) error {
	return errors.New("mock archive post failed")
}

func (m *MockArchiveFail) RecentArchived(ctx context.Context, limit int) ([]models.ArchivedPost, error) {
	return nil, errors.New("mock archive recent failed")
}

func (m *MockArchiveFail) ArchivedByAuthor(ctx context.Context, author string, limit int) ([]models.ArchivedPost, error) {
	return nil, errors.New("mock archive by author failed")
}

func (m *MockArchiveFail) Close() {}

// MockFeedStoreFail fails every append with a non-validation error.
type MockFeedStoreFail struct {
	*MemoryStore
}

// NewMockFeedStoreFail wraps a default-seeded store whose appends always fail.
func NewMockFeedStoreFail() *MockFeedStoreFail {
	return &MockFeedStoreFail{MemoryStore: NewMemory(DefaultSeed(time.Now()), nil)}
}

func (m *MockFeedStoreFail) AddPost(p models.NewPost) (models.Post, error) {
	return models.Post{}, errors.New("mock feed store add post failed")
}
