package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<rss version="2.0"><channel>
			<title>Probe Target</title>
			<description>A probe-able feed</description>
			<link>https://example.com</link>
			<item><guid>1</guid><title>One</title></item>
			<item><guid>2</guid><title>Two</title></item>
		</channel></rss>`))
	}))
	defer ts.Close()

	p := NewProbe(5*time.Second, "test-agent")
	res, err := p.Probe(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "Probe Target", res.Title)
	assert.Equal(t, "A probe-able feed", res.Description)
	assert.Equal(t, 2, res.ItemCount)
}

func TestProbe_NotAFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>a web page</body></html>"))
	}))
	defer ts.Close()

	p := NewProbe(5*time.Second, "test-agent")
	_, err := p.Probe(context.Background(), ts.URL)
	require.Error(t, err)
}
