package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// ProbeResult is feed metadata captured when a subscription URL is validated
type ProbeResult struct {
	Title       string
	Description string
	Link        string
	ItemCount   int
}

// Probe validates candidate feed URLs at subscription time. Unlike the
// streaming ingest parser it materializes the document with gofeed, which is
// fine here: a probe runs once per subscription on a user-supplied URL.
type Probe struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewProbe creates a probe with a bounded per-request timeout
func NewProbe(timeout time.Duration, userAgent string) *Probe {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &Probe{parser: parser, timeout: timeout}
}

// Probe fetches and parses the URL, confirming it is a working feed
func (p *Probe) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	parsed, err := p.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("probe feed %s: %w", url, err)
	}

	return &ProbeResult{
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		ItemCount:   len(parsed.Items),
	}, nil
}
