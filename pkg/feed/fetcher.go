package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Status is the tri-state outcome of a single fetch attempt
type Status int

// fetch outcomes
const (
	StatusFetched Status = iota
	StatusNotModified
	StatusFailed
)

// FailReason classifies a failed attempt; all reasons feed the same backoff
// branch but are reported distinctly
type FailReason string

// failure reasons
const (
	ReasonTransport  FailReason = "transport"
	ReasonTimeout    FailReason = "timeout"
	ReasonHTTPStatus FailReason = "http_status"
)

// RedirectHop records one hop of the redirect chain observed during a fetch
type RedirectHop struct {
	StatusCode int
	From       string
	To         string
}

// Permanent reports whether the hop was a 301 or 308 response
func (h RedirectHop) Permanent() bool {
	return h.StatusCode == http.StatusMovedPermanently || h.StatusCode == http.StatusPermanentRedirect
}

// FetchRequest is the input for one conditional GET
type FetchRequest struct {
	URL          string
	ETag         string
	LastModified string
}

// FetchResult is the outcome of one fetch attempt. For StatusFetched the
// Body must be consumed and closed by the caller; closing it releases the
// attempt deadline.
type FetchResult struct {
	Status     Status
	Reason     FailReason
	Err        error
	StatusCode int

	Body               io.ReadCloser
	ETag               string
	LastModified       string
	CacheControlMaxAge int // seconds, 0 when absent

	FinalURL  string
	Redirects []RedirectHop
	HubURL    string // WebSub hub from a Link response header, if any
}

// Fetcher performs conditional HTTP GETs for feed documents. Redirects are
// followed manually so every hop's status is observable; the chain is never
// applied to stored state here, that is the redirect tracker's job.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	maxRedirects int
	maxBodySize  int64
}

// NewFetcher creates a fetcher with a bounded per-attempt timeout
func NewFetcher(timeout time.Duration, userAgent string, maxBodySize int64) *Fetcher {
	if maxBodySize <= 0 {
		maxBodySize = 10 << 20 // 10MB
	}
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse // hops followed manually
			},
		},
		userAgent:    userAgent,
		timeout:      timeout,
		maxRedirects: 10,
		maxBodySize:  maxBodySize,
	}
}

// Fetch performs exactly one conditional GET, following redirects. The
// attempt, including body consumption by the caller, is bounded by the
// fetcher's timeout; exceeding it yields a timeout failure, never a block.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) *FetchResult {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	keepBody := false
	defer func() {
		if !keepBody {
			cancel()
		}
	}()

	current := req.URL
	var hops []RedirectHop

	for range f.maxRedirects {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, current, http.NoBody)
		if err != nil {
			return failedResult(ReasonTransport, fmt.Errorf("create request: %w", err), 0)
		}
		httpReq.Header.Set("User-Agent", f.userAgent)
		httpReq.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")
		if req.ETag != "" {
			httpReq.Header.Set("If-None-Match", req.ETag)
		}
		if req.LastModified != "" {
			httpReq.Header.Set("If-Modified-Since", req.LastModified)
		}

		resp, err := f.client.Do(httpReq)
		if err != nil {
			return failedResult(classifyFetchErr(err), fmt.Errorf("fetch %s: %w", current, err), 0)
		}

		switch {
		case isRedirect(resp.StatusCode):
			loc := resp.Header.Get("Location")
			drainBody(resp.Body)
			if loc == "" {
				return failedResult(ReasonHTTPStatus,
					fmt.Errorf("redirect %d from %s without location", resp.StatusCode, current), resp.StatusCode)
			}
			next, perr := resp.Request.URL.Parse(loc)
			if perr != nil {
				return failedResult(ReasonHTTPStatus, fmt.Errorf("bad redirect location %q: %w", loc, perr), resp.StatusCode)
			}
			hops = append(hops, RedirectHop{StatusCode: resp.StatusCode, From: current, To: next.String()})
			current = next.String()

		case resp.StatusCode == http.StatusNotModified:
			drainBody(resp.Body)
			res := &FetchResult{
				Status:       StatusNotModified,
				StatusCode:   resp.StatusCode,
				ETag:         headerOr(resp.Header.Get("ETag"), req.ETag),
				LastModified: headerOr(resp.Header.Get("Last-Modified"), req.LastModified),
				FinalURL:     current,
				Redirects:    hops,
			}
			res.CacheControlMaxAge = parseMaxAge(resp.Header.Get("Cache-Control"))
			return res

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			keepBody = true
			return &FetchResult{
				Status:             StatusFetched,
				StatusCode:         resp.StatusCode,
				Body:               &fetchBody{r: io.LimitReader(resp.Body, f.maxBodySize), body: resp.Body, cancel: cancel},
				ETag:               resp.Header.Get("ETag"),
				LastModified:       resp.Header.Get("Last-Modified"),
				CacheControlMaxAge: parseMaxAge(resp.Header.Get("Cache-Control")),
				FinalURL:           current,
				Redirects:          hops,
				HubURL:             hubFromLinkHeaders(resp.Header),
			}

		default:
			drainBody(resp.Body)
			return failedResult(ReasonHTTPStatus,
				fmt.Errorf("unexpected status %d from %s", resp.StatusCode, current), resp.StatusCode)
		}
	}

	return failedResult(ReasonHTTPStatus, fmt.Errorf("stopped after %d redirects for %s", f.maxRedirects, req.URL), 0)
}

// fetchBody limits the response body and releases the attempt deadline on close
type fetchBody struct {
	r      io.Reader
	body   io.Closer
	cancel context.CancelFunc
}

func (b *fetchBody) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *fetchBody) Close() error {
	err := b.body.Close()
	b.cancel()
	return err
}

func failedResult(reason FailReason, err error, code int) *FetchResult {
	return &FetchResult{Status: StatusFailed, Reason: reason, Err: err, StatusCode: code}
}

func classifyFetchErr(err error) FailReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func drainBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

func headerOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// parseMaxAge extracts max-age seconds from a Cache-Control header, 0 if absent
func parseMaxAge(header string) int {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return secs
			}
		}
	}
	return 0
}

// hubFromLinkHeaders extracts the first rel="hub" target from Link headers
func hubFromLinkHeaders(h http.Header) string {
	for _, header := range h.Values("Link") {
		for _, link := range strings.Split(header, ",") {
			var target, rel string
			for i, seg := range strings.Split(link, ";") {
				seg = strings.TrimSpace(seg)
				if i == 0 {
					target = strings.Trim(seg, "<>")
					continue
				}
				if v, ok := strings.CutPrefix(seg, "rel="); ok {
					rel = strings.Trim(v, `"`)
				}
			}
			if rel == "hub" && target != "" {
				return target
			}
		}
	}
	return ""
}
