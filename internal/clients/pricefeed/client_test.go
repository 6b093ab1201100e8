package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzagara/curvecast/internal/domain"
)

type tickingClock struct {
	now time.Time
}

func (c *tickingClock) Now() time.Time { return c.now }

func newTestClient(serverURL string, clock domain.Clock) *Client {
	return NewClient(Options{
		BaseURL:         serverURL,
		RequestsPerSec:  1000,
		MaxRetryElapsed: 500 * time.Millisecond,
		CacheTTL:        30 * time.Second,
	}, clock, zerolog.Nop())
}

func TestCurrentPrice_FetchesQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		fmt.Fprint(w, `{"symbol":"AAPL","price":187.25}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &tickingClock{now: time.Now()})
	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 187.25, price)
}

func TestCurrentPrice_CachesWithinTTL(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, `{"symbol":"AAPL","price":100}`)
	}))
	defer server.Close()

	clock := &tickingClock{now: time.Now()}
	client := newTestClient(server.URL, clock)

	for i := 0; i < 3; i++ {
		_, err := client.CurrentPrice(context.Background(), "AAPL")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	// Past the TTL the next lookup goes upstream again
	clock.now = clock.now.Add(time.Minute)
	_, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestCurrentPrice_RetriesServerErrors(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"symbol":"AAPL","price":100}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &tickingClock{now: time.Now()})
	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 100.0, price)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(2))
}

func TestCurrentPrice_StaleCacheBeatsOutage(t *testing.T) {
	var healthy int64 = 1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt64(&healthy) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"symbol":"AAPL","price":42}`)
	}))
	defer server.Close()

	clock := &tickingClock{now: time.Now()}
	client := newTestClient(server.URL, clock)

	_, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)

	// Feed goes down and the cached quote expires
	atomic.StoreInt64(&healthy, 0)
	clock.now = clock.now.Add(time.Hour)

	price, err := client.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 42.0, price)
}

func TestCurrentPrice_UnavailableWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &tickingClock{now: time.Now()})
	_, err := client.CurrentPrice(context.Background(), "MISSING")
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestCurrentPrice_RejectsNonPositivePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol":"AAPL","price":0}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &tickingClock{now: time.Now()})
	_, err := client.CurrentPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}
