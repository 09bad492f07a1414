package store

import (
	"context"

	"example.com/clyqfeed/internal/logger"
	"example.com/clyqfeed/internal/models"
)

var logg = logger.New()

// --- Interfaces ---

// FeedStore serves event snapshots and the post log. Implementations return copies;
// callers never see the backing containers.
type FeedStore interface {
	TrendingEvents() []models.TrendingEvent
	UpcomingEvents() []models.UpcomingEvent
	Posts() []models.Post
	PostCount() int
	AddPost(p models.NewPost) (models.Post, error)
}

// Archive is the append-only record of post_created events written by the worker.
type Archive interface {
	ArchivePost(ctx context.Context, ev models.PostEvent) error
	RecentArchived(ctx context.Context, limit int) ([]models.ArchivedPost, error)
	ArchivedByAuthor(ctx context.Context, author string, limit int) ([]models.ArchivedPost, error)
	Close()
}
