package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedpulse/feedpulse/pkg/domain"
)

func TestEntryRepository_InsertIfAbsent(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	entry := &domain.Entry{
		FeedID:      f.ID,
		GUID:        "guid-1",
		ContentHash: "abc",
		Title:       "Hello",
		Link:        "https://example.com/1",
		PublishedAt: time.Now().UTC(),
	}

	inserted, err := repos.Entry.InsertIfAbsent(ctx, entry)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, entry.ID)

	// same guid again is a no-op, not an error
	dup := &domain.Entry{FeedID: f.ID, GUID: "guid-1", Title: "Hello again"}
	inserted, err = repos.Entry.InsertIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err := repos.Entry.EntryExists(ctx, f.ID, "guid-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repos.Entry.EntryExists(ctx, f.ID, "guid-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEntryRepository_SameGUIDDifferentFeeds(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f1 := mustCreateFeed(t, repos, "https://one.example.com/feed")
	f2 := mustCreateFeed(t, repos, "https://two.example.com/feed")

	// dedup scope is per feed
	for _, f := range []*domain.Feed{f1, f2} {
		inserted, err := repos.Entry.InsertIfAbsent(ctx, &domain.Entry{FeedID: f.ID, GUID: "shared-guid"})
		require.NoError(t, err)
		assert.True(t, inserted)
	}
}

func TestEntryRepository_GetEntries_Ordering(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		entry := &domain.Entry{
			FeedID:      f.ID,
			GUID:        fmt.Sprintf("guid-%d", i),
			Title:       fmt.Sprintf("Entry %d", i),
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		}
		_, err := repos.Entry.InsertIfAbsent(ctx, entry)
		require.NoError(t, err)
	}

	entries, err := repos.Entry.GetEntries(ctx, f.ID, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// newest first
	assert.Equal(t, "Entry 4", entries[0].Title)
	assert.Equal(t, "Entry 3", entries[1].Title)
	assert.Equal(t, "Entry 2", entries[2].Title)
}

func TestEntryRepository_ZeroPublishedAt(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	entry := &domain.Entry{FeedID: f.ID, GUID: "no-date"}
	inserted, err := repos.Entry.InsertIfAbsent(ctx, entry)
	require.NoError(t, err)
	assert.True(t, inserted)

	entries, err := repos.Entry.GetEntries(ctx, f.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PublishedAt.IsZero())
}
