package store

import (
	"time"

	"example.com/clyqfeed/internal/models"
)

// Seed is the initial content of a MemoryStore. Posts are newest first.
type Seed struct {
	Trending []models.TrendingEvent
	Upcoming []models.UpcomingEvent
	Posts    []models.Post
}

// DefaultSeed returns the demo content the mobile client ships against.
// Post timestamps are relative to start.
func DefaultSeed(start time.Time) Seed {
	return Seed{
		Trending: []models.TrendingEvent{
			{
				ID:       1,
				Category: "CODECHEF CHAPTER",
				Title:    "HackOverflow 2.0",
				Tags:     []string{"Tech", "Coding", "Free"},
			},
			{
				ID:       2,
				Category: "STUDENT CLUB",
				Title:    "NextGen AI Summit",
				Tags:     []string{"AI", "Workshop", "Paid"},
			},
		},
		Upcoming: []models.UpcomingEvent{
			{
				ID:          1,
				Date:        "2026-01-16",
				Title:       "HackOverflow 2.0",
				Description: "The biggest coding competition on campus",
				Attending:   142,
			},
		},
		Posts: []models.Post{
			{
				ID:        1,
				Content:   "Just accepted the challenge for HackOverflow 2.0! 🚀 #coding",
				Author:    "Alex",
				Timestamp: models.NewTimestamp(start),
				Likes:     5,
			},
			{
				ID:        2,
				Content:   "Anyone going to the AI Summit tomorrow?",
				Author:    "Sarah",
				Timestamp: models.NewTimestamp(start.Add(-time.Hour)),
				Likes:     2,
			},
		},
	}
}
