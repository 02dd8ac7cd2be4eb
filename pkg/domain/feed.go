package domain

import "time"

// FeedType distinguishes pollable web feeds from virtual sources
type FeedType string

// feed types; only web feeds are ever polled
const (
	FeedTypeWeb    FeedType = "web"
	FeedTypeSaved  FeedType = "saved"
	FeedTypeImport FeedType = "import"
)

// Feed represents one subscribed content source
type Feed struct {
	ID          int64
	URL         string
	Type        FeedType
	Title       string
	Description string

	// caching validators from the most recent successful fetch
	ETag               string
	LastModified       string
	CacheControlMaxAge int // seconds, 0 when the origin supplied none

	NextFetchAt         time.Time
	LastFetchedAt       *time.Time
	ConsecutiveFailures int
	LastError           string

	// in-progress permanent redirect promotion
	PendingRedirectURL   string
	RedirectConfirmCount int

	// push subscription state
	WebSubHubURL         string
	WebSubSubscribed     bool
	WebSubLeaseExpiresAt *time.Time

	Retired   bool
	CreatedAt time.Time
}

// PushActive reports whether the feed holds an unexpired WebSub lease
func (f *Feed) PushActive(now time.Time) bool {
	return f.WebSubSubscribed && f.WebSubLeaseExpiresAt != nil && f.WebSubLeaseExpiresAt.After(now)
}

// Pollable reports whether the scheduler may dispatch a fetch for this feed.
// Saved and import feeds are never polled, retired feeds keep their history
// but drop out of scheduling, and an active push lease suspends polling.
func (f *Feed) Pollable(now time.Time) bool {
	return f.Type == FeedTypeWeb && !f.Retired && !f.PushActive(now)
}

// AttemptUpdate carries the complete feed-state delta produced by one fetch
// attempt. The repository applies it atomically with any entry inserts.
type AttemptUpdate struct {
	Success bool

	// validators and advisory interval, persisted only on success
	ETag               string
	LastModified       string
	CacheControlMaxAge int

	NextFetchAt         time.Time
	ConsecutiveFailures int
	LastError           string

	// feed metadata refresh from the parsed document
	Title       string
	Description string

	// redirect tracker output; NewURL empty means keep the stored URL
	NewURL               string
	PendingRedirectURL   string
	RedirectConfirmCount int
}

// WebSubUpdate carries a push-subscription state change for one feed
type WebSubUpdate struct {
	HubURL         string
	Subscribed     bool
	LeaseExpiresAt *time.Time

	// NextFetchAt is the far-future polling fallback that must exist even
	// while the lease suppresses regular polling; zero means leave as is
	NextFetchAt time.Time
}
