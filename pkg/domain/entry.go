package domain

import "time"

// Entry represents one discrete piece of content within a feed.
// (FeedID, GUID) is unique per feed; re-ingesting a seen GUID is a no-op.
type Entry struct {
	ID          int64
	FeedID      int64
	GUID        string
	ContentHash string
	Title       string
	Link        string
	Summary     string
	Content     string
	Author      string
	PublishedAt time.Time
	CreatedAt   time.Time
}
