package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceUA struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceUA) UserAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("test-agent/%d", s.n)
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func newTestClient(origin string, sleeps *recordedSleeps) *Client {
	return New(origin,
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
		WithUserAgents(&sequenceUA{}),
		WithSleep(sleeps.sleep),
	)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var attempts int32
	var agents []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, "<html>ok</html>")
	}))
	defer server.Close()

	sleeps := &recordedSleeps{}
	client := newTestClient(server.URL, sleeps)

	body, err := client.Fetch(context.Background(), server.URL+"/home")
	require.NoError(t, err)

	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
	assert.Equal(t, []string{"test-agent/1", "test-agent/2", "test-agent/3"}, agents)
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sleeps := &recordedSleeps{}
	client := newTestClient(server.URL, sleeps)

	_, err := client.Fetch(context.Background(), server.URL+"/home")
	require.Error(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Len(t, sleeps.delays, 2, "no wait after the final failure")
	assert.Contains(t, err.Error(), "failed after 3 attempts")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = fmt.Fprint(w, `<html><body><div class="flw-item">x</div></body></html>`)
	}))
	defer server.Close()

	client := newTestClient("https://sflix.example", &recordedSleeps{})
	doc, err := client.FetchDocument(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Find(".flw-item").Length())
	assert.Equal(t, "https://sflix.example", got.Get("Referer"))
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "no-cache", got.Get("Cache-Control"))
	assert.Equal(t, "1", got.Get("DNT"))
	assert.Equal(t, "test-agent/1", got.Get("User-Agent"))
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := New(server.URL,
		WithUserAgents(&sequenceUA{}),
		WithSleep(func(context.Context, time.Duration) error {
			cancel()
			return context.Canceled
		}),
	)

	_, err := client.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Contains(t, err.Error(), "failed after 1 attempts")
}
