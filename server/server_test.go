package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedpulse/feedpulse/pkg/domain"
	"github.com/feedpulse/feedpulse/pkg/feed"
	"github.com/feedpulse/feedpulse/pkg/websub"
	"github.com/feedpulse/feedpulse/server/mocks"
)

type testDeps struct {
	feeds   *mocks.FeedStoreMock
	entries *mocks.EntryStoreMock
	sched   *mocks.SchedulerMock
	subs    *mocks.SubManagerMock
	prober  *mocks.ProberMock
}

func newTestServer(t *testing.T) (*httptest.Server, *testDeps) {
	t.Helper()

	deps := &testDeps{
		feeds:   &mocks.FeedStoreMock{},
		entries: &mocks.EntryStoreMock{},
		sched:   &mocks.SchedulerMock{},
		subs:    &mocks.SubManagerMock{},
		prober:  &mocks.ProberMock{},
	}

	srv := New(Config{
		Listen:       ":0",
		Timeout:      5 * time.Second,
		WebSubEnable: true,
	}, deps.feeds, deps.entries, deps.sched, deps.subs, deps.prober, "test", false)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, deps
}

func TestServer_Status(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServer_CreateFeed(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.prober.ProbeFunc = func(ctx context.Context, feedURL string) (*feed.ProbeResult, error) {
		return &feed.ProbeResult{Title: "Probed Title", Description: "Probed description", ItemCount: 3}, nil
	}
	deps.feeds.CreateFeedFunc = func(ctx context.Context, f *domain.Feed) error {
		f.ID = 42
		return nil
	}

	resp, err := http.Post(ts.URL+"/api/v1/feeds", "application/json",
		strings.NewReader(`{"url": "https://example.com/feed.xml"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, deps.prober.ProbeCalls(), 1)
	assert.Equal(t, "https://example.com/feed.xml", deps.prober.ProbeCalls()[0].FeedURL)

	created := deps.feeds.CreateFeedCalls()
	require.Len(t, created, 1)
	assert.Equal(t, "Probed Title", created[0].Feed.Title)
}

func TestServer_CreateFeed_Invalid(t *testing.T) {
	ts, deps := newTestServer(t)

	t.Run("missing url", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/feeds", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("probe failure", func(t *testing.T) {
		deps.prober.ProbeFunc = func(ctx context.Context, feedURL string) (*feed.ProbeResult, error) {
			return nil, fmt.Errorf("not a feed")
		}
		resp, err := http.Post(ts.URL+"/api/v1/feeds", "application/json",
			strings.NewReader(`{"url": "https://example.com/page.html"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Empty(t, deps.feeds.CreateFeedCalls())
	})
}

func TestServer_ListFeeds(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.feeds.ListFeedsFunc = func(ctx context.Context, includeRetired bool) ([]domain.Feed, error) {
		return []domain.Feed{{ID: 1, URL: "https://example.com/feed"}}, nil
	}

	resp, err := http.Get(ts.URL + "/api/v1/feeds")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, deps.feeds.ListFeedsCalls(), 1)
	assert.False(t, deps.feeds.ListFeedsCalls()[0].IncludeRetired)

	resp2, err := http.Get(ts.URL + "/api/v1/feeds?all=true")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.True(t, deps.feeds.ListFeedsCalls()[1].IncludeRetired)
}

func TestServer_RetireFeed(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.feeds.GetFeedFunc = func(ctx context.Context, id int64) (*domain.Feed, error) {
		return &domain.Feed{ID: id, URL: "https://example.com/feed", WebSubSubscribed: true}, nil
	}
	deps.feeds.RetireFeedFunc = func(ctx context.Context, id int64) error { return nil }
	deps.subs.UnsubscribeFunc = func(ctx context.Context, f *domain.Feed) error { return nil }

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/feeds/7", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Len(t, deps.feeds.RetireFeedCalls(), 1)
	assert.Equal(t, int64(7), deps.feeds.RetireFeedCalls()[0].ID)

	// active push subscription dropped before retirement
	assert.Len(t, deps.subs.UnsubscribeCalls(), 1)
}

func TestServer_FeedEntries(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.entries.GetEntriesFunc = func(ctx context.Context, feedID int64, limit int) ([]domain.Entry, error) {
		return []domain.Entry{{ID: 1, FeedID: feedID, Title: "Entry"}}, nil
	}

	resp, err := http.Get(ts.URL + "/api/v1/feeds/3/entries?limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	calls := deps.entries.GetEntriesCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(3), calls[0].FeedID)
	assert.Equal(t, 10, calls[0].Limit)
}

func TestServer_RefreshFeed(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.sched.FetchFeedNowFunc = func(ctx context.Context, feedID int64) error { return nil }

	resp, err := http.Post(ts.URL+"/api/v1/feeds/5/refresh", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, deps.sched.FetchFeedNowCalls(), 1)
	assert.Equal(t, int64(5), deps.sched.FetchFeedNowCalls()[0].FeedID)
}

func TestServer_WebSubVerify(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.subs.HandleVerifyFunc = func(ctx context.Context, feedID int64, query url.Values) websub.VerifyResult {
		if query.Get("token") == "good" {
			return websub.VerifyResult{Challenge: query.Get("hub.challenge"), OK: true}
		}
		return websub.VerifyResult{}
	}

	t.Run("valid verification echoes challenge", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/websub/1?hub.mode=subscribe&hub.challenge=abc123&token=good")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := make([]byte, 16)
		n, _ := resp.Body.Read(body)
		assert.Equal(t, "abc123", string(body[:n]))
	})

	t.Run("invalid verification refused", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/websub/1?hub.mode=subscribe&hub.challenge=abc123&token=bad")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_WebSubDelivery(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.subs.HandleDeliveryFunc = func(feedID int64, body []byte) error { return nil }

	resp, err := http.Post(ts.URL+"/websub/9", "application/atom+xml", strings.NewReader("<feed/>"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	calls := deps.subs.HandleDeliveryCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(9), calls[0].FeedID)
	assert.Equal(t, "<feed/>", string(calls[0].Body))
}

func TestServer_WebSubDelivery_QueueFull(t *testing.T) {
	ts, deps := newTestServer(t)

	deps.subs.HandleDeliveryFunc = func(feedID int64, body []byte) error {
		return fmt.Errorf("push queue full")
	}

	resp, err := http.Post(ts.URL+"/websub/9", "application/atom+xml", strings.NewReader("<feed/>"))
	require.NoError(t, err)
	defer resp.Body.Close()

	// 5xx tells the hub to retry the delivery
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_InvalidFeedID(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/feeds/notanumber")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
