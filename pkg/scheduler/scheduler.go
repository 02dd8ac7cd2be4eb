package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/feedpulse/feedpulse/pkg/domain"
	"github.com/feedpulse/feedpulse/pkg/feed"
)

//go:generate moq -out mocks/feed_manager.go -pkg mocks -skip-ensure -fmt goimports . FeedManager
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/hub_notifier.go -pkg mocks -skip-ensure -fmt goimports . HubNotifier

// FeedManager is the persistence seam the scheduler drives
type FeedManager interface {
	ListDueFeeds(ctx context.Context, now time.Time) ([]domain.Feed, error)
	GetFeed(ctx context.Context, id int64) (*domain.Feed, error)
	CommitAttempt(ctx context.Context, feedID int64, upd *domain.AttemptUpdate, entries []domain.Entry) (int, error)
}

// Fetcher performs one conditional fetch attempt
type Fetcher interface {
	Fetch(ctx context.Context, req feed.FetchRequest) *feed.FetchResult
}

// HubNotifier receives hub advertisements discovered during fetches; the
// websub manager implements it, nil disables push subscriptions
type HubNotifier interface {
	FeedFetched(ctx context.Context, f *domain.Feed, hubURL string)
}

// maxEntriesPerFetch caps how many entries one document may contribute;
// together with the fetcher's body cap it bounds per-feed memory
const maxEntriesPerFetch = 1000

// Scheduler drives the fetch -> parse -> persist pipeline for all pollable
// feeds. It is the only writer of next_fetch_at and consecutive_failures,
// dispatches due feeds with bounded concurrency, and guarantees at most one
// in-flight attempt per feed. Push deliveries enter the same pipeline
// through an internal queue so dedup/persist logic stays single-sourced.
type Scheduler struct {
	feeds     FeedManager
	fetcher   Fetcher
	backoff   *feed.Backoff
	sanitizer *feed.Sanitizer
	hubs      HubNotifier

	tickInterval time.Duration
	maxWorkers   int

	inflightMu sync.Mutex
	inflight   map[int64]struct{}

	pushCh chan pushDelivery
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

type pushDelivery struct {
	feedID int64
	body   []byte
}

// Params holds scheduler configuration and collaborators
type Params struct {
	FeedManager  FeedManager
	Fetcher      Fetcher
	Backoff      *feed.Backoff
	Sanitizer    *feed.Sanitizer
	HubNotifier  HubNotifier
	TickInterval time.Duration
	MaxWorkers   int
}

// NewScheduler creates a scheduler; zero params get sane defaults
func NewScheduler(p Params) *Scheduler {
	if p.TickInterval == 0 {
		p.TickInterval = time.Minute
	}
	if p.MaxWorkers == 0 {
		p.MaxWorkers = 8
	}
	if p.Backoff == nil {
		p.Backoff = feed.NewBackoff(0, 0, 0.1)
	}
	if p.Sanitizer == nil {
		p.Sanitizer = feed.NewSanitizer()
	}
	return &Scheduler{
		feeds:        p.FeedManager,
		fetcher:      p.Fetcher,
		backoff:      p.Backoff,
		sanitizer:    p.Sanitizer,
		hubs:         p.HubNotifier,
		tickInterval: p.TickInterval,
		maxWorkers:   p.MaxWorkers,
		inflight:     make(map[int64]struct{}),
		pushCh:       make(chan pushDelivery, 64),
	}
}

// SetHubNotifier wires the push-subscription manager in after construction;
// the manager also consumes the scheduler's push queue, so one of the two
// has to be attached late. Must be called before Start.
func (s *Scheduler) SetHubNotifier(h HubNotifier) {
	s.hubs = h
}

// Start begins the polling loop and the push-delivery worker
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.pollLoop(ctx)

	s.wg.Add(1)
	go s.pushLoop(ctx)

	lgr.Printf("[INFO] scheduler started, tick %v, %d workers", s.tickInterval, s.maxWorkers)
}

// Stop gracefully stops the scheduler, waiting for in-flight attempts
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	// run immediately on start
	s.RunDueFeeds(ctx, time.Now(), s.maxWorkers)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunDueFeeds(ctx, time.Now(), s.maxWorkers)
		}
	}
}

// RunDueFeeds selects all due pollable feeds and dispatches fetch attempts
// with at most concurrencyLimit running at once. A feed already in flight is
// skipped, never dispatched twice.
func (s *Scheduler) RunDueFeeds(ctx context.Context, now time.Time, concurrencyLimit int) {
	due, err := s.feeds.ListDueFeeds(ctx, now)
	if err != nil {
		lgr.Printf("[ERROR] failed to list due feeds: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	lgr.Printf("[DEBUG] %d feeds due", len(due))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit)

	for _, f := range due {
		if !s.acquire(f.ID) {
			continue // attempt already in flight for this feed
		}
		g.Go(func() error {
			defer s.release(f.ID)
			s.processFeed(ctx, &f)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		lgr.Printf("[ERROR] due feed dispatch: %v", err)
	}
}

// processFeed runs the full pipeline for one feed: fetch, parse, dedup
// insert and state update. Every branch commits a schedule so the feed is
// never left without a next_fetch_at.
func (s *Scheduler) processFeed(ctx context.Context, f *domain.Feed) {
	lgr.Printf("[DEBUG] fetching feed %s", f.URL)

	res := s.fetcher.Fetch(ctx, feed.FetchRequest{URL: f.URL, ETag: f.ETag, LastModified: f.LastModified})

	switch res.Status {
	case feed.StatusNotModified:
		s.commitSuccess(ctx, f, res, feed.Info{}, nil)
		lgr.Printf("[DEBUG] feed %s not modified", f.URL)

	case feed.StatusFailed:
		lgr.Printf("[WARN] fetch failed for %s (%s): %v", f.URL, res.Reason, res.Err)
		s.commitFailure(ctx, f, fmt.Sprintf("%s: %v", res.Reason, res.Err))

	case feed.StatusFetched:
		defer func() { _ = res.Body.Close() }()

		entries, info, err := s.parseEntries(f.ID, res.Body)
		if err != nil {
			lgr.Printf("[WARN] parse failed for %s: %v", f.URL, err)
			s.commitFailure(ctx, f, fmt.Sprintf("parse: %v", err))
			return
		}

		if info.HubURL == "" {
			info.HubURL = res.HubURL
		}
		inserted := s.commitSuccess(ctx, f, res, info, entries)
		if inserted > 0 {
			lgr.Printf("[INFO] added %d new entries from %s", inserted, f.URL)
		}

		if info.HubURL != "" && s.hubs != nil {
			s.hubs.FeedFetched(ctx, f, info.HubURL)
		}
	}
}

// parseEntries streams the document into normalized, sanitized entries
func (s *Scheduler) parseEntries(feedID int64, body io.Reader) ([]domain.Entry, feed.Info, error) {
	stream, err := feed.NewStream(body)
	if err != nil {
		return nil, feed.Info{}, err
	}

	var entries []domain.Entry
	for {
		e, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, feed.Info{}, err
		}

		published := e.Published
		if published.IsZero() {
			published = time.Now().UTC()
		}
		entries = append(entries, domain.Entry{
			FeedID:      feedID,
			GUID:        e.GUID,
			ContentHash: e.ContentHash,
			Title:       e.Title,
			Link:        e.Link,
			Summary:     s.sanitizer.Clean(e.Summary),
			Content:     s.sanitizer.Clean(e.Content),
			Author:      e.Author,
			PublishedAt: published,
		})

		if len(entries) >= maxEntriesPerFetch {
			lgr.Printf("[WARN] feed %d produced more than %d entries, truncating", feedID, maxEntriesPerFetch)
			break
		}
	}
	return entries, stream.Info(), nil
}

// commitSuccess persists a successful attempt (Fetched or NotModified) with
// its entries in one transaction and returns the inserted count
func (s *Scheduler) commitSuccess(ctx context.Context, f *domain.Feed, res *feed.FetchResult, info feed.Info, entries []domain.Entry) int {
	// a 304 usually omits Cache-Control; keep the learned interval then
	maxAge := res.CacheControlMaxAge
	if res.Status == feed.StatusNotModified && maxAge == 0 {
		maxAge = f.CacheControlMaxAge
	}

	decision := feed.ResolveRedirect(f, res.Redirects)

	upd := &domain.AttemptUpdate{
		Success:              true,
		ETag:                 res.ETag,
		LastModified:         res.LastModified,
		CacheControlMaxAge:   maxAge,
		NextFetchAt:          time.Now().Add(s.backoff.NextOnSuccess(maxAge)),
		Title:                info.Title,
		Description:          info.Description,
		NewURL:               decision.PromoteURL,
		PendingRedirectURL:   decision.PendingURL,
		RedirectConfirmCount: decision.ConfirmCount,
	}

	inserted, err := s.feeds.CommitAttempt(ctx, f.ID, upd, entries)
	if err != nil {
		lgr.Printf("[ERROR] failed to commit attempt for feed %d: %v", f.ID, err)
		return 0
	}
	if decision.PromoteURL != "" {
		lgr.Printf("[INFO] promoted feed %d url to %s after %d confirmations", f.ID, decision.PromoteURL, feed.RedirectConfirmThreshold)
	}
	return inserted
}

// commitFailure increments the failure counter and backs off; redirect
// confirmation state is preserved since a failed attempt observed no chain
func (s *Scheduler) commitFailure(ctx context.Context, f *domain.Feed, errMsg string) {
	failures := f.ConsecutiveFailures + 1
	upd := &domain.AttemptUpdate{
		Success:              false,
		NextFetchAt:          time.Now().Add(s.backoff.NextOnFailure(failures)),
		ConsecutiveFailures:  failures,
		LastError:            errMsg,
		PendingRedirectURL:   f.PendingRedirectURL,
		RedirectConfirmCount: f.RedirectConfirmCount,
	}
	if _, err := s.feeds.CommitAttempt(ctx, f.ID, upd, nil); err != nil {
		lgr.Printf("[ERROR] failed to commit failure for feed %d: %v", f.ID, err)
	}
}

// EnqueuePush hands a WebSub delivery body to the ingest pipeline; it never
// blocks the HTTP callback, a full queue rejects the delivery and the feed
// recovers via its polling fallback
func (s *Scheduler) EnqueuePush(feedID int64, body []byte) error {
	select {
	case s.pushCh <- pushDelivery{feedID: feedID, body: body}:
		return nil
	default:
		return fmt.Errorf("push queue full, dropped delivery for feed %d", feedID)
	}
}

func (s *Scheduler) pushLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.pushCh:
			s.ingestPush(ctx, d)
		}
	}
}

// ingestPush treats a push body exactly like a successful fetch: same parse,
// same dedup, same transactional commit. Failures are hub errors and leave
// feed state alone; the polling fallback covers a misbehaving hub.
func (s *Scheduler) ingestPush(ctx context.Context, d pushDelivery) {
	if !s.acquireWait(ctx, d.feedID) {
		lgr.Printf("[WARN] dropped push for feed %d, could not acquire slot", d.feedID)
		return
	}
	defer s.release(d.feedID)

	f, err := s.feeds.GetFeed(ctx, d.feedID)
	if err != nil {
		lgr.Printf("[WARN] push for unknown feed %d: %v", d.feedID, err)
		return
	}

	entries, info, err := s.parseEntries(f.ID, bytes.NewReader(d.body))
	if err != nil {
		lgr.Printf("[WARN] push parse failed for feed %d: %v", f.ID, err)
		return
	}

	upd := &domain.AttemptUpdate{
		Success: true,
		// push carries no validators; keep the stored ones for the next poll
		ETag:               f.ETag,
		LastModified:       f.LastModified,
		CacheControlMaxAge: f.CacheControlMaxAge,
		// re-arm the far-future safety net; lease expiry brings polling back
		NextFetchAt:          time.Now().Add(feed.MaxInterval),
		Title:                info.Title,
		Description:          info.Description,
		PendingRedirectURL:   f.PendingRedirectURL,
		RedirectConfirmCount: f.RedirectConfirmCount,
	}

	inserted, err := s.feeds.CommitAttempt(ctx, f.ID, upd, entries)
	if err != nil {
		lgr.Printf("[ERROR] failed to commit push for feed %d: %v", f.ID, err)
		return
	}
	lgr.Printf("[INFO] push delivery for feed %d: %d new entries", f.ID, inserted)
}

// FetchFeedNow triggers an immediate attempt for one feed, bypassing the due
// check but not the per-feed mutual exclusion
func (s *Scheduler) FetchFeedNow(ctx context.Context, feedID int64) error {
	f, err := s.feeds.GetFeed(ctx, feedID)
	if err != nil {
		return fmt.Errorf("get feed %d: %w", feedID, err)
	}
	if !s.acquire(feedID) {
		return fmt.Errorf("feed %d already being fetched", feedID)
	}
	defer s.release(feedID)

	s.processFeed(ctx, f)
	return nil
}

// acquire marks a feed in flight; false means an attempt is already running
func (s *Scheduler) acquire(feedID int64) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[feedID]; busy {
		return false
	}
	s.inflight[feedID] = struct{}{}
	return true
}

// acquireWait retries acquisition briefly; used by push ingest which may
// race a poll of the same feed
func (s *Scheduler) acquireWait(ctx context.Context, feedID int64) bool {
	for range 50 {
		if s.acquire(feedID) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
	return false
}

func (s *Scheduler) release(feedID int64) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, feedID)
}
