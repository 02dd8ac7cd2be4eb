package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedpulse/feedpulse/pkg/domain"
)

func mustCreateFeed(t *testing.T, repos *Repositories, url string) *domain.Feed {
	t.Helper()
	f := &domain.Feed{URL: url}
	require.NoError(t, repos.Feed.CreateFeed(context.Background(), f))
	return f
}

func TestFeedRepository_ListDueFeeds(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	due := &domain.Feed{URL: "https://due.example.com/feed", NextFetchAt: now.Add(-time.Minute)}
	require.NoError(t, repos.Feed.CreateFeed(ctx, due))

	future := &domain.Feed{URL: "https://future.example.com/feed", NextFetchAt: now.Add(time.Hour)}
	require.NoError(t, repos.Feed.CreateFeed(ctx, future))

	retired := &domain.Feed{URL: "https://retired.example.com/feed", NextFetchAt: now.Add(-time.Minute)}
	require.NoError(t, repos.Feed.CreateFeed(ctx, retired))
	require.NoError(t, repos.Feed.RetireFeed(ctx, retired.ID))

	saved := &domain.Feed{URL: "https://saved.example.com/feed", Type: domain.FeedTypeSaved, NextFetchAt: now.Add(-time.Minute)}
	require.NoError(t, repos.Feed.CreateFeed(ctx, saved))

	feeds, err := repos.Feed.ListDueFeeds(ctx, now)
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, due.ID, feeds[0].ID)
}

func TestFeedRepository_ListDueFeeds_LeaseSuppressesPolling(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	leased := &domain.Feed{URL: "https://pushed.example.com/feed", NextFetchAt: now.Add(-time.Minute)}
	require.NoError(t, repos.Feed.CreateFeed(ctx, leased))

	expires := now.Add(time.Hour)
	err := repos.Feed.UpdateWebSub(ctx, leased.ID, domain.WebSubUpdate{
		HubURL:         "https://hub.example.com/",
		Subscribed:     true,
		LeaseExpiresAt: &expires,
	})
	require.NoError(t, err)

	// active lease excludes the feed even though next_fetch_at has passed
	feeds, err := repos.Feed.ListDueFeeds(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, feeds)

	// expired lease brings it back
	feeds, err = repos.Feed.ListDueFeeds(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, leased.ID, feeds[0].ID)
}

func TestFeedRepository_CommitAttempt_Success(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	next := time.Now().UTC().Add(30 * time.Minute).Truncate(time.Second)
	upd := &domain.AttemptUpdate{
		Success:            true,
		ETag:               `"v2"`,
		LastModified:       "Mon, 02 Jan 2006 15:04:05 GMT",
		CacheControlMaxAge: 1800,
		NextFetchAt:        next,
		Title:              "Fetched Title",
		Description:        "Fetched description",
	}
	entries := []domain.Entry{
		{FeedID: f.ID, GUID: "a", Title: "A"},
		{FeedID: f.ID, GUID: "b", Title: "B"},
	}

	inserted, err := repos.Feed.CommitAttempt(ctx, f.ID, upd, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	got, err := repos.Feed.GetFeed(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, got.ETag)
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", got.LastModified)
	assert.Equal(t, 1800, got.CacheControlMaxAge)
	assert.Equal(t, "Fetched Title", got.Title)
	assert.Zero(t, got.ConsecutiveFailures)
	assert.Empty(t, got.LastError)
	assert.NotNil(t, got.LastFetchedAt)

	count, err := repos.Entry.CountEntries(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFeedRepository_CommitAttempt_DedupAcrossAttempts(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	upd := &domain.AttemptUpdate{Success: true, NextFetchAt: time.Now().UTC().Add(time.Hour)}
	entries := []domain.Entry{
		{FeedID: f.ID, GUID: "a", Title: "A"},
		{FeedID: f.ID, GUID: "b", Title: "B"},
	}

	inserted, err := repos.Feed.CommitAttempt(ctx, f.ID, upd, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// same document again plus one fresh entry; only the new one lands
	again := []domain.Entry{
		{FeedID: f.ID, GUID: "a", Title: "A"},
		{FeedID: f.ID, GUID: "b", Title: "B"},
		{FeedID: f.ID, GUID: "c", Title: "C"},
	}
	inserted, err = repos.Feed.CommitAttempt(ctx, f.ID, upd, again)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	count, err := repos.Entry.CountEntries(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFeedRepository_CommitAttempt_FailurePreservesValidators(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	// establish validators with a successful attempt
	ok := &domain.AttemptUpdate{
		Success:      true,
		ETag:         `"v1"`,
		LastModified: "Mon, 02 Jan 2006 15:04:05 GMT",
		NextFetchAt:  time.Now().UTC().Add(time.Hour),
	}
	_, err := repos.Feed.CommitAttempt(ctx, f.ID, ok, nil)
	require.NoError(t, err)

	next := time.Now().UTC().Add(10 * time.Minute).Truncate(time.Second)
	fail := &domain.AttemptUpdate{
		Success:             false,
		NextFetchAt:         next,
		ConsecutiveFailures: 1,
		LastError:           "http_status: unexpected status 500",
	}
	_, err = repos.Feed.CommitAttempt(ctx, f.ID, fail, nil)
	require.NoError(t, err)

	got, err := repos.Feed.GetFeed(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, got.ETag, "failure must not clear validators")
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", got.LastModified)
	assert.Equal(t, 1, got.ConsecutiveFailures)
	assert.Equal(t, "http_status: unexpected status 500", got.LastError)
}

func TestFeedRepository_CommitAttempt_URLPromotion(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://old.example.com/feed")

	upd := &domain.AttemptUpdate{
		Success:     true,
		NextFetchAt: time.Now().UTC().Add(time.Hour),
		NewURL:      "https://new.example.com/feed",
	}
	_, err := repos.Feed.CommitAttempt(ctx, f.ID, upd, nil)
	require.NoError(t, err)

	got, err := repos.Feed.GetFeed(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com/feed", got.URL)
	assert.Empty(t, got.PendingRedirectURL)
	assert.Zero(t, got.RedirectConfirmCount)
}

func TestFeedRepository_UpdateWebSub(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	expires := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	fallback := expires.Add(24 * time.Hour)
	err := repos.Feed.UpdateWebSub(ctx, f.ID, domain.WebSubUpdate{
		HubURL:         "https://hub.example.com/",
		Subscribed:     true,
		LeaseExpiresAt: &expires,
		NextFetchAt:    fallback,
	})
	require.NoError(t, err)

	got, err := repos.Feed.GetFeed(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.WebSubSubscribed)
	assert.Equal(t, "https://hub.example.com/", got.WebSubHubURL)
	require.NotNil(t, got.WebSubLeaseExpiresAt)
	assert.True(t, got.PushActive(time.Now()))
	assert.False(t, got.Pollable(time.Now()))

	// zero NextFetchAt leaves the schedule alone
	err = repos.Feed.UpdateWebSub(ctx, f.ID, domain.WebSubUpdate{HubURL: got.WebSubHubURL, Subscribed: false})
	require.NoError(t, err)

	got2, err := repos.Feed.GetFeed(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, got2.WebSubSubscribed)
	assert.Equal(t, got.NextFetchAt.Unix(), got2.NextFetchAt.Unix())
}

func TestFeedRepository_ListExpiringLeases(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()

	soon := mustCreateFeed(t, repos, "https://soon.example.com/feed")
	soonExp := now.Add(10 * time.Minute)
	require.NoError(t, repos.Feed.UpdateWebSub(ctx, soon.ID, domain.WebSubUpdate{
		HubURL: "https://hub.example.com/", Subscribed: true, LeaseExpiresAt: &soonExp,
	}))

	later := mustCreateFeed(t, repos, "https://later.example.com/feed")
	laterExp := now.Add(48 * time.Hour)
	require.NoError(t, repos.Feed.UpdateWebSub(ctx, later.ID, domain.WebSubUpdate{
		HubURL: "https://hub.example.com/", Subscribed: true, LeaseExpiresAt: &laterExp,
	}))

	feeds, err := repos.Feed.ListExpiringLeases(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, soon.ID, feeds[0].ID)
}

func TestFeedRepository_RetireFeed(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := mustCreateFeed(t, repos, "https://example.com/feed")

	// entries survive retirement
	entry := &domain.Entry{FeedID: f.ID, GUID: "keep-me"}
	_, err := repos.Entry.InsertIfAbsent(ctx, entry)
	require.NoError(t, err)

	require.NoError(t, repos.Feed.RetireFeed(ctx, f.ID))

	feeds, err := repos.Feed.ListFeeds(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, feeds)

	all, err := repos.Feed.ListFeeds(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Retired)

	count, err := repos.Entry.CountEntries(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// retiring a missing feed errors
	assert.Error(t, repos.Feed.RetireFeed(ctx, 9999))
}

func TestFeedRepository_CreateFeed_DuplicateURL(t *testing.T) {
	repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateFeed(t, repos, "https://example.com/feed")

	dup := &domain.Feed{URL: "https://example.com/feed"}
	assert.Error(t, repos.Feed.CreateFeed(ctx, dup))
}
