package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/feedpulse/feedpulse/pkg/db"
	"github.com/feedpulse/feedpulse/pkg/domain"
)

// FeedRepository handles feed-related database operations
type FeedRepository struct {
	db *sqlx.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// CreateFeed inserts a new feed; a zero NextFetchAt makes it immediately due
func (r *FeedRepository) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	if feed.Type == "" {
		feed.Type = domain.FeedTypeWeb
	}
	if feed.NextFetchAt.IsZero() {
		feed.NextFetchAt = time.Now().UTC()
	}

	query := `
		INSERT INTO feeds (url, type, title, description, next_fetch_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, feed.URL, string(feed.Type), feed.Title, feed.Description, feed.NextFetchAt)
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get insert id: %w", err)
	}
	feed.ID = id
	return nil
}

// GetFeed retrieves a feed by ID
func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*domain.Feed, error) {
	var dbFeed db.Feed
	if err := r.db.GetContext(ctx, &dbFeed, "SELECT * FROM feeds WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return toDomainFeed(&dbFeed), nil
}

// GetFeedByURL retrieves a feed by its current URL; two subscriptions to the
// same URL resolve to the same row
func (r *FeedRepository) GetFeedByURL(ctx context.Context, url string) (*domain.Feed, error) {
	var dbFeed db.Feed
	if err := r.db.GetContext(ctx, &dbFeed, "SELECT * FROM feeds WHERE url = ?", url); err != nil {
		return nil, fmt.Errorf("get feed by url: %w", err)
	}
	return toDomainFeed(&dbFeed), nil
}

// ListFeeds retrieves all feeds, optionally including retired ones
func (r *FeedRepository) ListFeeds(ctx context.Context, includeRetired bool) ([]domain.Feed, error) {
	query := "SELECT * FROM feeds"
	if !includeRetired {
		query += " WHERE retired = 0"
	}
	query += " ORDER BY id"

	var dbFeeds []db.Feed
	if err := r.db.SelectContext(ctx, &dbFeeds, query); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return toDomainFeeds(dbFeeds), nil
}

// ListDueFeeds retrieves pollable feeds whose next_fetch_at has passed.
// Feeds holding an unexpired push lease are excluded; their far-future
// fallback next_fetch_at brings them back if the hub goes silent.
func (r *FeedRepository) ListDueFeeds(ctx context.Context, now time.Time) ([]domain.Feed, error) {
	query := `
		SELECT * FROM feeds
		WHERE retired = 0
		  AND type = 'web'
		  AND next_fetch_at <= ?
		  AND NOT (websub_subscribed = 1 AND websub_lease_expires_at IS NOT NULL AND websub_lease_expires_at > ?)
		ORDER BY next_fetch_at
	`
	var dbFeeds []db.Feed
	if err := r.db.SelectContext(ctx, &dbFeeds, query, now, now); err != nil {
		return nil, fmt.Errorf("list due feeds: %w", err)
	}
	return toDomainFeeds(dbFeeds), nil
}

// CommitAttempt applies the outcome of one fetch attempt: entry inserts and
// the feed-state update happen in a single transaction, so a failure cannot
// leave validators updated without their entries (or vice versa). Returns
// the number of entries actually inserted after dedup.
func (r *FeedRepository) CommitAttempt(ctx context.Context, feedID int64, upd *domain.AttemptUpdate, entries []domain.Entry) (inserted int, err error) {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	err = retrier.Do(ctx, func() error {
		inserted = 0
		tx, txErr := r.db.BeginTxx(ctx, nil)
		if txErr != nil {
			return retryable(fmt.Errorf("begin attempt tx: %w", txErr))
		}
		defer func() { _ = tx.Rollback() }()

		for i := range entries {
			ok, insErr := insertEntryTx(ctx, tx, &entries[i])
			if insErr != nil {
				return retryable(fmt.Errorf("insert entry %s: %w", entries[i].GUID, insErr))
			}
			if ok {
				inserted++
			}
		}

		if upErr := updateFeedTx(ctx, tx, feedID, upd); upErr != nil {
			return retryable(upErr)
		}

		if cErr := tx.Commit(); cErr != nil {
			return retryable(fmt.Errorf("commit attempt: %w", cErr))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("commit attempt for feed %d: %w", feedID, err)
	}
	return inserted, nil
}

// updateFeedTx writes the feed-state part of an attempt
func updateFeedTx(ctx context.Context, tx *sqlx.Tx, feedID int64, upd *domain.AttemptUpdate) error {
	if upd.Success {
		query := `
			UPDATE feeds SET
				url = CASE WHEN ? != '' THEN ? ELSE url END,
				title = CASE WHEN ? != '' THEN ? ELSE title END,
				description = CASE WHEN ? != '' THEN ? ELSE description END,
				etag = ?,
				last_modified = ?,
				cache_control_max_age = ?,
				next_fetch_at = ?,
				last_fetched_at = CURRENT_TIMESTAMP,
				consecutive_failures = 0,
				last_error = '',
				pending_redirect_url = ?,
				redirect_confirm_count = ?
			WHERE id = ?
		`
		_, err := tx.ExecContext(ctx, query,
			upd.NewURL, upd.NewURL, upd.Title, upd.Title, upd.Description, upd.Description,
			upd.ETag, upd.LastModified, upd.CacheControlMaxAge, upd.NextFetchAt,
			upd.PendingRedirectURL, upd.RedirectConfirmCount, feedID)
		if err != nil {
			return fmt.Errorf("update feed after success: %w", err)
		}
		return nil
	}

	// failure path leaves validators and metadata untouched so the next
	// poll retries the full document
	query := `
		UPDATE feeds SET
			next_fetch_at = ?,
			consecutive_failures = ?,
			last_error = ?,
			pending_redirect_url = ?,
			redirect_confirm_count = ?
		WHERE id = ?
	`
	_, err := tx.ExecContext(ctx, query,
		upd.NextFetchAt, upd.ConsecutiveFailures, upd.LastError,
		upd.PendingRedirectURL, upd.RedirectConfirmCount, feedID)
	if err != nil {
		return fmt.Errorf("update feed after failure: %w", err)
	}
	return nil
}

// UpdateWebSub applies a push-subscription state change
func (r *FeedRepository) UpdateWebSub(ctx context.Context, feedID int64, upd domain.WebSubUpdate) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			UPDATE feeds SET
				websub_hub_url = ?,
				websub_subscribed = ?,
				websub_lease_expires_at = ?,
				next_fetch_at = CASE WHEN ? THEN ? ELSE next_fetch_at END
			WHERE id = ?
		`
		var lease any
		if upd.LeaseExpiresAt != nil {
			lease = *upd.LeaseExpiresAt
		}
		_, err := r.db.ExecContext(ctx, query,
			upd.HubURL, upd.Subscribed, lease, !upd.NextFetchAt.IsZero(), upd.NextFetchAt, feedID)
		if err != nil {
			return retryable(fmt.Errorf("update websub state: %w", err))
		}
		return nil
	})
}

// ListExpiringLeases returns subscribed feeds whose lease ends before the
// given time; the websub manager renews these
func (r *FeedRepository) ListExpiringLeases(ctx context.Context, before time.Time) ([]domain.Feed, error) {
	query := `
		SELECT * FROM feeds
		WHERE retired = 0
		  AND websub_subscribed = 1
		  AND websub_lease_expires_at IS NOT NULL
		  AND websub_lease_expires_at <= ?
	`
	var dbFeeds []db.Feed
	if err := r.db.SelectContext(ctx, &dbFeeds, query, before); err != nil {
		return nil, fmt.Errorf("list expiring leases: %w", err)
	}
	return toDomainFeeds(dbFeeds), nil
}

// RetireFeed soft-retires a feed, preserving its fetch history and entries
func (r *FeedRepository) RetireFeed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE feeds SET retired = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("retire feed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("retire feed: feed %d not found", id)
	}
	return nil
}

// retryable passes SQLite lock errors to repeater and stops on anything else
func retryable(err error) error {
	if isLockError(err) {
		return err
	}
	return &criticalError{err: err}
}

func toDomainFeed(f *db.Feed) *domain.Feed {
	res := &domain.Feed{
		ID:                   f.ID,
		URL:                  f.URL,
		Type:                 domain.FeedType(f.Type),
		Title:                f.Title,
		Description:          f.Description,
		ETag:                 f.ETag,
		LastModified:         f.LastModified,
		CacheControlMaxAge:   f.CacheControlMaxAge,
		NextFetchAt:          f.NextFetchAt,
		ConsecutiveFailures:  f.ConsecutiveFailures,
		LastError:            f.LastError,
		PendingRedirectURL:   f.PendingRedirectURL,
		RedirectConfirmCount: f.RedirectConfirmCount,
		WebSubHubURL:         f.WebSubHubURL,
		WebSubSubscribed:     f.WebSubSubscribed,
		Retired:              f.Retired,
		CreatedAt:            f.CreatedAt,
	}
	if f.LastFetchedAt.Valid {
		t := f.LastFetchedAt.Time
		res.LastFetchedAt = &t
	}
	if f.WebSubLeaseExpiresAt.Valid {
		t := f.WebSubLeaseExpiresAt.Time
		res.WebSubLeaseExpiresAt = &t
	}
	return res
}

func toDomainFeeds(dbFeeds []db.Feed) []domain.Feed {
	feeds := make([]domain.Feed, len(dbFeeds))
	for i := range dbFeeds {
		feeds[i] = *toDomainFeed(&dbFeeds[i])
	}
	return feeds
}
