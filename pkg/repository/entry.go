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

// EntryRepository handles entry-related database operations
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// InsertIfAbsent inserts an entry unless (feed_id, guid) already exists;
// returns true when a row was actually inserted
func (r *EntryRepository) InsertIfAbsent(ctx context.Context, entry *domain.Entry) (bool, error) {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	var inserted bool
	err := retrier.Do(ctx, func() error {
		ok, insErr := insertEntryTx(ctx, r.db, entry)
		if insErr != nil {
			return retryable(fmt.Errorf("insert entry: %w", insErr))
		}
		inserted = ok
		return nil
	})
	return inserted, err
}

// GetEntries retrieves the most recent entries of a feed
func (r *EntryRepository) GetEntries(ctx context.Context, feedID int64, limit int) ([]domain.Entry, error) {
	query := `
		SELECT * FROM entries
		WHERE feed_id = ?
		ORDER BY published_at DESC, id DESC
		LIMIT ?
	`
	var dbEntries []db.Entry
	if err := r.db.SelectContext(ctx, &dbEntries, query, feedID, limit); err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}

	entries := make([]domain.Entry, len(dbEntries))
	for i := range dbEntries {
		entries[i] = *toDomainEntry(&dbEntries[i])
	}
	return entries, nil
}

// EntryExists checks whether a guid was already ingested for a feed
func (r *EntryRepository) EntryExists(ctx context.Context, feedID int64, guid string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries WHERE feed_id = ? AND guid = ?", feedID, guid)
	if err != nil {
		return false, fmt.Errorf("check entry existence: %w", err)
	}
	return count > 0, nil
}

// CountEntries returns the number of stored entries for a feed
func (r *EntryRepository) CountEntries(ctx context.Context, feedID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries WHERE feed_id = ?", feedID); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// insertEntryTx is the single source of the dedup insert; both the direct
// InsertIfAbsent path and the transactional attempt commit go through it.
// The (feed_id, guid) unique constraint does the dedup, not app-level locks.
func insertEntryTx(ctx context.Context, ext sqlx.ExtContext, entry *domain.Entry) (bool, error) {
	query := `
		INSERT INTO entries (feed_id, guid, content_hash, title, link, summary, content, author, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id, guid) DO NOTHING
	`
	var published any
	if !entry.PublishedAt.IsZero() {
		published = entry.PublishedAt
	}
	res, err := ext.ExecContext(ctx, query,
		entry.FeedID, entry.GUID, entry.ContentHash, entry.Title, entry.Link,
		entry.Summary, entry.Content, entry.Author, published)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil // already ingested
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return true, nil
}

func toDomainEntry(e *db.Entry) *domain.Entry {
	res := &domain.Entry{
		ID:          e.ID,
		FeedID:      e.FeedID,
		GUID:        e.GUID,
		ContentHash: e.ContentHash,
		Title:       e.Title,
		Link:        e.Link,
		Summary:     e.Summary,
		Content:     e.Content,
		Author:      e.Author,
		CreatedAt:   e.CreatedAt,
	}
	if e.PublishedAt.Valid {
		res.PublishedAt = e.PublishedAt.Time
	}
	return res
}
