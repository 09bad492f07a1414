package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"example.com/clyqfeed/internal/models"
)

// MemoryStore keeps the feed in process memory. Restarting the process resets it to its seed.
type MemoryStore struct {
	mu       sync.RWMutex
	trending []models.TrendingEvent
	upcoming []models.UpcomingEvent
	posts    []models.Post // newest first
	now      func() time.Time
}

// NewMemory builds a store from seed. now defaults to time.Now.
func NewMemory(seed Seed, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		trending: cloneTrending(seed.Trending),
		upcoming: slices.Clone(seed.Upcoming),
		posts:    slices.Clone(seed.Posts),
		now:      now,
	}
}

// --- Event operations ---

func (s *MemoryStore) TrendingEvents() []models.TrendingEvent {
	// event lists are never mutated after construction
	return cloneTrending(s.trending)
}

func (s *MemoryStore) UpcomingEvents() []models.UpcomingEvent {
	out := make([]models.UpcomingEvent, len(s.upcoming))
	copy(out, s.upcoming)
	return out
}

// --- Post operations ---

func (s *MemoryStore) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

func (s *MemoryStore) PostCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// AddPost validates p and prepends a new post to the feed.
// The id is the post count at creation time plus one; it stays unique only while
// posts are never removed.
func (s *MemoryStore) AddPost(p models.NewPost) (models.Post, error) {
	if err := models.Validate(p); err != nil {
		return models.Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post := models.Post{
		ID:        len(s.posts) + 1,
		Content:   p.Content,
		Author:    p.Author,
		Timestamp: models.NewTimestamp(s.now()),
		Likes:     0,
	}
	s.posts = slices.Insert(s.posts, 0, post)

	logg.Debug("store", fmt.Sprintf("Post %d added to feed", post.ID))
	return post, nil
}

func cloneTrending(in []models.TrendingEvent) []models.TrendingEvent {
	out := make([]models.TrendingEvent, len(in))
	for i, ev := range in {
		ev.Tags = slices.Clone(ev.Tags)
		out[i] = ev
	}
	return out
}
