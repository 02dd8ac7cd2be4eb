package websub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedpulse/feedpulse/pkg/domain"
	"github.com/feedpulse/feedpulse/pkg/websub/mocks"
)

func newTestManager(store *mocks.FeedStoreMock, sink *mocks.PushSinkMock) *Manager {
	return NewManager(Params{
		Store:           store,
		Sink:            sink,
		CallbackBaseURL: "https://me.example.com",
		LeaseSeconds:    3600,
	})
}

func TestManager_Subscribe(t *testing.T) {
	var gotForm url.Values
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hub.Close()

	m := newTestManager(&mocks.FeedStoreMock{}, &mocks.PushSinkMock{})
	f := &domain.Feed{ID: 1, URL: "https://example.com/feed"}

	require.NoError(t, m.Subscribe(context.Background(), f, hub.URL))

	assert.Equal(t, "subscribe", gotForm.Get("hub.mode"))
	assert.Equal(t, "https://example.com/feed", gotForm.Get("hub.topic"))
	assert.Equal(t, "3600", gotForm.Get("hub.lease_seconds"))

	cb, err := url.Parse(gotForm.Get("hub.callback"))
	require.NoError(t, err)
	assert.Equal(t, "/websub/1", cb.Path)
	assert.NotEmpty(t, cb.Query().Get("token"))

	// pending state recorded for the verification callback
	p, ok := m.getPending(1)
	require.True(t, ok)
	assert.Equal(t, cb.Query().Get("token"), p.token)
	assert.Equal(t, "subscribe", p.mode)
}

func TestManager_Subscribe_HubRejects(t *testing.T) {
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer hub.Close()

	m := newTestManager(&mocks.FeedStoreMock{}, &mocks.PushSinkMock{})
	f := &domain.Feed{ID: 1, URL: "https://example.com/feed"}

	require.Error(t, m.Subscribe(context.Background(), f, hub.URL))

	// failed request must not leave a pending operation behind
	_, ok := m.getPending(1)
	assert.False(t, ok)
}

func TestManager_HandleVerify_SubscribeConfirmed(t *testing.T) {
	store := &mocks.FeedStoreMock{
		UpdateWebSubFunc: func(ctx context.Context, feedID int64, upd domain.WebSubUpdate) error {
			return nil
		},
	}
	m := newTestManager(store, &mocks.PushSinkMock{})
	m.setPending(1, pendingSub{token: "tok", hubURL: "https://hub.example.com/", topic: "https://example.com/feed", mode: "subscribe"})

	q := url.Values{}
	q.Set("hub.mode", "subscribe")
	q.Set("hub.topic", "https://example.com/feed")
	q.Set("hub.challenge", "challenge-string")
	q.Set("hub.lease_seconds", "7200")
	q.Set("token", "tok")

	res := m.HandleVerify(context.Background(), 1, q)
	require.True(t, res.OK)
	assert.Equal(t, "challenge-string", res.Challenge)

	calls := store.UpdateWebSubCalls()
	require.Len(t, calls, 1)
	upd := calls[0].Upd
	assert.True(t, upd.Subscribed)
	assert.Equal(t, "https://hub.example.com/", upd.HubURL)
	require.NotNil(t, upd.LeaseExpiresAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *upd.LeaseExpiresAt, 5*time.Second)
	// polling fallback sits a day past the lease
	assert.WithinDuration(t, upd.LeaseExpiresAt.Add(24*time.Hour), upd.NextFetchAt, 5*time.Second)

	// pending cleared, a replay is refused
	res = m.HandleVerify(context.Background(), 1, q)
	assert.False(t, res.OK)
}

func TestManager_HandleVerify_Rejections(t *testing.T) {
	m := newTestManager(&mocks.FeedStoreMock{}, &mocks.PushSinkMock{})
	m.setPending(1, pendingSub{token: "tok", hubURL: "https://hub.example.com/", topic: "https://example.com/feed", mode: "subscribe"})

	base := func() url.Values {
		q := url.Values{}
		q.Set("hub.mode", "subscribe")
		q.Set("hub.topic", "https://example.com/feed")
		q.Set("hub.challenge", "c")
		q.Set("token", "tok")
		return q
	}

	t.Run("wrong token", func(t *testing.T) {
		q := base()
		q.Set("token", "forged")
		assert.False(t, m.HandleVerify(context.Background(), 1, q).OK)
	})

	t.Run("wrong topic", func(t *testing.T) {
		q := base()
		q.Set("hub.topic", "https://other.example.com/feed")
		assert.False(t, m.HandleVerify(context.Background(), 1, q).OK)
	})

	t.Run("wrong mode", func(t *testing.T) {
		q := base()
		q.Set("hub.mode", "unsubscribe")
		assert.False(t, m.HandleVerify(context.Background(), 1, q).OK)
	})

	t.Run("no pending operation", func(t *testing.T) {
		assert.False(t, m.HandleVerify(context.Background(), 99, base()).OK)
	})
}

func TestManager_HandleVerify_Denied(t *testing.T) {
	store := &mocks.FeedStoreMock{
		GetFeedFunc: func(ctx context.Context, id int64) (*domain.Feed, error) {
			return &domain.Feed{ID: id, WebSubHubURL: "https://hub.example.com/"}, nil
		},
		UpdateWebSubFunc: func(ctx context.Context, feedID int64, upd domain.WebSubUpdate) error {
			return nil
		},
	}
	m := newTestManager(store, &mocks.PushSinkMock{})
	m.setPending(1, pendingSub{token: "tok", hubURL: "https://hub.example.com/", topic: "https://example.com/feed", mode: "subscribe"})

	q := url.Values{}
	q.Set("hub.mode", "denied")
	q.Set("hub.topic", "https://example.com/feed")
	q.Set("hub.reason", "not allowed")

	res := m.HandleVerify(context.Background(), 1, q)
	assert.False(t, res.OK)

	// denial flips the feed back to polling
	calls := store.UpdateWebSubCalls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Upd.Subscribed)
	assert.False(t, calls[0].Upd.NextFetchAt.IsZero())
}

func TestManager_HandleDelivery(t *testing.T) {
	sink := &mocks.PushSinkMock{
		EnqueuePushFunc: func(feedID int64, body []byte) error { return nil },
	}
	m := newTestManager(&mocks.FeedStoreMock{}, sink)

	require.NoError(t, m.HandleDelivery(5, []byte("<rss/>")))

	calls := sink.EnqueuePushCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(5), calls[0].FeedID)
	assert.Equal(t, []byte("<rss/>"), calls[0].Body)
}

func TestManager_FeedFetched_ActiveLeaseNoop(t *testing.T) {
	m := newTestManager(&mocks.FeedStoreMock{}, &mocks.PushSinkMock{})

	expires := time.Now().Add(time.Hour)
	f := &domain.Feed{
		ID: 1, URL: "https://example.com/feed",
		WebSubHubURL: "https://hub.example.com/", WebSubSubscribed: true, WebSubLeaseExpiresAt: &expires,
	}

	// same hub, healthy lease: no new subscribe attempt gets recorded
	m.FeedFetched(context.Background(), f, "https://hub.example.com/")
	_, ok := m.getPending(1)
	assert.False(t, ok)
}

func TestManager_Unsubscribe(t *testing.T) {
	hubCalled := false
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "unsubscribe", r.PostForm.Get("hub.mode"))
		hubCalled = true
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hub.Close()

	store := &mocks.FeedStoreMock{
		UpdateWebSubFunc: func(ctx context.Context, feedID int64, upd domain.WebSubUpdate) error {
			return nil
		},
	}
	m := newTestManager(store, &mocks.PushSinkMock{})

	f := &domain.Feed{ID: 2, URL: "https://example.com/feed", WebSubHubURL: hub.URL, WebSubSubscribed: true}
	require.NoError(t, m.Unsubscribe(context.Background(), f))

	assert.True(t, hubCalled)

	// local state cleared immediately, polling resumes
	calls := store.UpdateWebSubCalls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Upd.Subscribed)
	assert.False(t, calls[0].Upd.NextFetchAt.IsZero())
}

func TestManager_RenewExpiring(t *testing.T) {
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hub.Close()

	store := &mocks.FeedStoreMock{
		ListExpiringLeasesFunc: func(ctx context.Context, before time.Time) ([]domain.Feed, error) {
			// renewal horizon is 20% of the lease
			assert.WithinDuration(t, time.Now().Add(720*time.Second), before, 5*time.Second)
			return []domain.Feed{{ID: 3, URL: "https://example.com/feed", WebSubHubURL: hub.URL}}, nil
		},
	}
	m := newTestManager(store, &mocks.PushSinkMock{})

	m.renewExpiring(context.Background())

	// renewal queued a fresh subscribe with pending verification
	p, ok := m.getPending(3)
	require.True(t, ok)
	assert.Equal(t, "subscribe", p.mode)
	assert.Equal(t, hub.URL, p.hubURL)
}
