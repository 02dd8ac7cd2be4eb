// Package websub manages push subscriptions: hub discovery handoff,
// subscribe/unsubscribe requests, verification challenges and lease renewal.
// Delivered content is handed to the scheduler so push and poll share one
// ingestion pipeline.
package websub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/google/uuid"

	"github.com/feedpulse/feedpulse/pkg/domain"
	"github.com/feedpulse/feedpulse/pkg/feed"
)

//go:generate moq -out mocks/feed_store.go -pkg mocks -skip-ensure -fmt goimports . FeedStore
//go:generate moq -out mocks/push_sink.go -pkg mocks -skip-ensure -fmt goimports . PushSink

// FeedStore is the persistence seam for subscription state
type FeedStore interface {
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
	UpdateWebSub(ctx context.Context, feedID int64, upd domain.WebSubUpdate) error
	ListExpiringLeases(ctx context.Context, before time.Time) ([]domain.Feed, error)
}

// PushSink accepts delivered feed documents for ingestion
type PushSink interface {
	EnqueuePush(feedID int64, body []byte) error
}

// pollFallbackSlack keeps a just-in-case poll scheduled after lease expiry
// so a hub that silently stops delivering cannot strand a feed
const pollFallbackSlack = 24 * time.Hour

// renewFraction renews a lease once less than this share of it remains
const renewFraction = 0.2

type pendingSub struct {
	token  string
	hubURL string
	topic  string
	mode   string
}

// Manager owns the push-subscription state machine for all feeds
type Manager struct {
	store        FeedStore
	sink         PushSink
	client       *http.Client
	callbackBase string
	leaseSeconds int

	pendingMu sync.Mutex
	pending   map[int64]pendingSub

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Params holds manager configuration and collaborators
type Params struct {
	Store           FeedStore
	Sink            PushSink
	CallbackBaseURL string // public base for hub callbacks, e.g. https://host
	LeaseSeconds    int
	Timeout         time.Duration
}

// NewManager creates a websub manager; zero params get sane defaults
func NewManager(p Params) *Manager {
	if p.LeaseSeconds == 0 {
		p.LeaseSeconds = 86400
	}
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	return &Manager{
		store:        p.Store,
		sink:         p.Sink,
		client:       &http.Client{Timeout: p.Timeout},
		callbackBase: strings.TrimRight(p.CallbackBaseURL, "/"),
		leaseSeconds: p.LeaseSeconds,
		pending:      make(map[int64]pendingSub),
	}
}

// Start begins the lease renewal loop
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.renewLoop(ctx)
	lgr.Printf("[INFO] websub manager started, lease %ds, callback base %s", m.leaseSeconds, m.callbackBase)
}

// Stop stops the renewal loop
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// FeedFetched is called by the scheduler when a fetch discovered a hub
// advertisement. An active subscription to the same hub is left alone,
// anything else triggers a subscribe attempt. Hub errors are non-fatal, the
// feed simply stays on its polling schedule.
func (m *Manager) FeedFetched(ctx context.Context, f *domain.Feed, hubURL string) {
	if f.PushActive(time.Now()) && f.WebSubHubURL == hubURL {
		return
	}
	if err := m.Subscribe(ctx, f, hubURL); err != nil {
		lgr.Printf("[WARN] websub subscribe failed for feed %d at %s: %v", f.ID, hubURL, err)
	}
}

// Subscribe sends a subscription request to the hub. The hub verifies
// asynchronously through the GET callback, so success here only means the
// request was accepted.
func (m *Manager) Subscribe(ctx context.Context, f *domain.Feed, hubURL string) error {
	token := uuid.New().String()
	m.setPending(f.ID, pendingSub{token: token, hubURL: hubURL, topic: f.URL, mode: "subscribe"})

	if err := m.sendHubRequest(ctx, f.ID, hubURL, f.URL, "subscribe", token); err != nil {
		m.clearPending(f.ID)
		return err
	}
	lgr.Printf("[INFO] websub subscribe requested for feed %d, hub %s", f.ID, hubURL)
	return nil
}

// Unsubscribe asks the hub to drop the subscription and marks the feed as
// polling-only right away; the hub's confirmation is best effort
func (m *Manager) Unsubscribe(ctx context.Context, f *domain.Feed) error {
	if f.WebSubHubURL == "" {
		return nil
	}
	token := uuid.New().String()
	m.setPending(f.ID, pendingSub{token: token, hubURL: f.WebSubHubURL, topic: f.URL, mode: "unsubscribe"})

	if err := m.sendHubRequest(ctx, f.ID, f.WebSubHubURL, f.URL, "unsubscribe", token); err != nil {
		lgr.Printf("[WARN] websub unsubscribe request failed for feed %d: %v", f.ID, err)
	}

	upd := domain.WebSubUpdate{HubURL: f.WebSubHubURL, Subscribed: false, NextFetchAt: time.Now()}
	if err := m.store.UpdateWebSub(ctx, f.ID, upd); err != nil {
		return fmt.Errorf("clear websub state: %w", err)
	}
	return nil
}

// sendHubRequest posts the subscription form to the hub, retrying transient
// failures
func (m *Manager) sendHubRequest(ctx context.Context, feedID int64, hubURL, topic, mode, token string) error {
	form := url.Values{}
	form.Set("hub.callback", m.callbackURL(feedID, token))
	form.Set("hub.mode", mode)
	form.Set("hub.topic", topic)
	form.Set("hub.lease_seconds", strconv.Itoa(m.leaseSeconds))

	retrier := repeater.NewBackoff(3, time.Second, repeater.WithMaxDelay(10*time.Second))
	return retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hubURL, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("create hub request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := m.client.Do(req)
		if err != nil {
			return fmt.Errorf("post to hub: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("hub returned status %d", resp.StatusCode)
		}
		return nil
	})
}

// VerifyResult is the outcome of a hub verification callback
type VerifyResult struct {
	Challenge string
	OK        bool
}

// HandleVerify processes the hub's GET verification callback. The challenge
// is echoed back only when the request matches a pending operation for the
// feed; everything else is refused so a stray hub cannot flip subscription
// state.
func (m *Manager) HandleVerify(ctx context.Context, feedID int64, query url.Values) VerifyResult {
	mode := query.Get("hub.mode")
	topic := query.Get("hub.topic")
	challenge := query.Get("hub.challenge")
	token := query.Get("token")

	if mode == "denied" {
		lgr.Printf("[WARN] websub subscription denied for feed %d, topic %s: %s", feedID, topic, query.Get("hub.reason"))
		m.clearPending(feedID)
		m.markUnsubscribed(ctx, feedID)
		return VerifyResult{OK: false}
	}

	p, ok := m.getPending(feedID)
	if !ok || p.token != token || p.mode != mode || p.topic != topic {
		lgr.Printf("[WARN] rejected websub verification for feed %d, mode %q topic %q", feedID, mode, topic)
		return VerifyResult{OK: false}
	}
	m.clearPending(feedID)

	switch mode {
	case "subscribe":
		leaseSeconds, err := strconv.Atoi(query.Get("hub.lease_seconds"))
		if err != nil || leaseSeconds <= 0 {
			leaseSeconds = m.leaseSeconds
		}
		now := time.Now()
		expires := now.Add(time.Duration(leaseSeconds) * time.Second)
		fallback := expires.Add(pollFallbackSlack)
		if limit := now.Add(feed.MaxInterval); fallback.After(limit) {
			fallback = limit
		}
		upd := domain.WebSubUpdate{
			HubURL:         p.hubURL,
			Subscribed:     true,
			LeaseExpiresAt: &expires,
			NextFetchAt:    fallback,
		}
		if err := m.store.UpdateWebSub(ctx, feedID, upd); err != nil {
			lgr.Printf("[ERROR] failed to persist websub lease for feed %d: %v", feedID, err)
			return VerifyResult{OK: false}
		}
		lgr.Printf("[INFO] websub subscription confirmed for feed %d, lease until %s", feedID, expires.Format(time.RFC3339))

	case "unsubscribe":
		m.markUnsubscribed(ctx, feedID)
		lgr.Printf("[INFO] websub unsubscribe confirmed for feed %d", feedID)

	default:
		return VerifyResult{OK: false}
	}

	return VerifyResult{Challenge: challenge, OK: true}
}

// HandleDelivery accepts a content push from the hub and queues it for
// ingestion
func (m *Manager) HandleDelivery(feedID int64, body []byte) error {
	if err := m.sink.EnqueuePush(feedID, body); err != nil {
		return fmt.Errorf("queue push delivery: %w", err)
	}
	lgr.Printf("[DEBUG] queued websub delivery for feed %d, %d bytes", feedID, len(body))
	return nil
}

func (m *Manager) markUnsubscribed(ctx context.Context, feedID int64) {
	f, err := m.store.GetFeed(ctx, feedID)
	if err != nil {
		lgr.Printf("[ERROR] failed to load feed %d for unsubscribe: %v", feedID, err)
		return
	}
	upd := domain.WebSubUpdate{HubURL: f.WebSubHubURL, Subscribed: false, NextFetchAt: time.Now()}
	if err := m.store.UpdateWebSub(ctx, feedID, upd); err != nil {
		lgr.Printf("[ERROR] failed to clear websub state for feed %d: %v", feedID, err)
	}
}

// renewLoop re-subscribes feeds whose lease is close to expiry
func (m *Manager) renewLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.renewExpiring(ctx)
		}
	}
}

func (m *Manager) renewExpiring(ctx context.Context) {
	ahead := time.Duration(float64(m.leaseSeconds)*renewFraction) * time.Second
	feeds, err := m.store.ListExpiringLeases(ctx, time.Now().Add(ahead))
	if err != nil {
		lgr.Printf("[ERROR] failed to list expiring leases: %v", err)
		return
	}
	for i := range feeds {
		f := feeds[i]
		if err := m.Subscribe(ctx, &f, f.WebSubHubURL); err != nil {
			lgr.Printf("[WARN] lease renewal failed for feed %d: %v", f.ID, err)
		}
	}
}

// callbackURL builds the per-subscription callback; the token in the query
// ties verifications to the request that created them
func (m *Manager) callbackURL(feedID int64, token string) string {
	return fmt.Sprintf("%s/websub/%d?token=%s", m.callbackBase, feedID, token)
}

func (m *Manager) setPending(feedID int64, p pendingSub) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	m.pending[feedID] = p
}

func (m *Manager) getPending(feedID int64) (pendingSub, bool) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	p, ok := m.pending[feedID]
	return p, ok
}

func (m *Manager) clearPending(feedID int64) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	delete(m.pending, feedID)
}
