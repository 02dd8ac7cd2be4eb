package db

import (
	"database/sql"
	"time"
)

// Feed represents a subscribed feed source row
type Feed struct {
	ID                   int64        `db:"id"`
	URL                  string       `db:"url"`
	Type                 string       `db:"type"`
	Title                string       `db:"title"`
	Description          string       `db:"description"`
	ETag                 string       `db:"etag"`
	LastModified         string       `db:"last_modified"`
	CacheControlMaxAge   int          `db:"cache_control_max_age"`
	NextFetchAt          time.Time    `db:"next_fetch_at"`
	LastFetchedAt        sql.NullTime `db:"last_fetched_at"`
	ConsecutiveFailures  int          `db:"consecutive_failures"`
	LastError            string       `db:"last_error"`
	PendingRedirectURL   string       `db:"pending_redirect_url"`
	RedirectConfirmCount int          `db:"redirect_confirm_count"`
	WebSubHubURL         string       `db:"websub_hub_url"`
	WebSubSubscribed     bool         `db:"websub_subscribed"`
	WebSubLeaseExpiresAt sql.NullTime `db:"websub_lease_expires_at"`
	Retired              bool         `db:"retired"`
	CreatedAt            time.Time    `db:"created_at"`
}

// Entry represents a single ingested feed entry row
type Entry struct {
	ID          int64        `db:"id"`
	FeedID      int64        `db:"feed_id"`
	GUID        string       `db:"guid"`
	ContentHash string       `db:"content_hash"`
	Title       string       `db:"title"`
	Link        string       `db:"link"`
	Summary     string       `db:"summary"`
	Content     string       `db:"content"`
	Author      string       `db:"author"`
	PublishedAt sql.NullTime `db:"published_at"`
	CreatedAt   time.Time    `db:"created_at"`
}
