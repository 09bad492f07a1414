package models

import "time"

// TrendingEvent is a highlighted event shown on the explore screen.
type TrendingEvent struct {
	ID       int      `json:"id"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
}

// UpcomingEvent is a dated calendar entry. Date is an ISO calendar date (YYYY-MM-DD).
type UpcomingEvent struct {
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Attending   int    `json:"attending"`
}

type Post struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Timestamp Timestamp `json:"timestamp"`
	Likes     int       `json:"likes"`
}

// NewPost is the input of an append to the feed.
type NewPost struct {
	Content string `json:"content" validate:"required"`
	Author  string `json:"author"`
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// PostEventType is the Kafka key and type of a post creation event.
const PostEventType = "post_created"

// PostEvent is published after a post is appended to the feed.
type PostEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Post      Post      `json:"post"`
	EmittedAt time.Time `json:"emitted_at"`
}

// ArchivedPost is one row of the post event archive.
type ArchivedPost struct {
	EventID    string    `json:"event_id"`
	PostID     int       `json:"post_id"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	Likes      int       `json:"likes"`
	CreatedAt  time.Time `json:"created_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// TimestampLayout is the wire format of post timestamps: UTC with exactly three
// fractional digits, so values sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a post creation instant, held in UTC at millisecond precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t the way post timestamps are stored.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tt time.Time
	if err := tt.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = NewTimestamp(tt)
	return nil
}
