// Package pricefeed provides current price lookups with caching functionality.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tzagara/curvecast/internal/domain"
)

// Options configure the client; zero values fall back to defaults
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryElapsed time.Duration
	CacheTTL        time.Duration
}

// Client fetches quotes over HTTP and implements domain.PriceFeed.
// Concurrent lookups for the same symbol collapse into one upstream call.
type Client struct {
	baseURL         string
	client          *http.Client
	limiter         *rate.Limiter
	group           singleflight.Group
	maxRetryElapsed time.Duration
	cacheTTL        time.Duration
	clock           domain.Clock
	log             zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	price     float64
	fetchedAt time.Time
}

// NewClient creates a new price feed client
func NewClient(opts Options, clock domain.Clock, log zerolog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryElapsed == 0 {
		opts.MaxRetryElapsed = 15 * time.Second
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 30 * time.Second
	}

	return &Client{
		baseURL:         opts.BaseURL,
		client:          &http.Client{Timeout: opts.Timeout},
		limiter:         rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		maxRetryElapsed: opts.MaxRetryElapsed,
		cacheTTL:        opts.CacheTTL,
		clock:           clock,
		cache:           make(map[string]cachedQuote),
		log:             log.With().Str("client", "pricefeed").Logger(),
	}
}

// CurrentPrice returns the latest price for a symbol. If the upstream feed
// fails, a stale cached quote is better than no quote at all.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if price, ok := c.fromCache(symbol, c.cacheTTL); ok {
		return price, nil
	}

	result, err, _ := c.group.Do(symbol, func() (interface{}, error) {
		return c.fetch(ctx, symbol)
	})
	if err != nil {
		if price, ok := c.fromCache(symbol, 0); ok {
			c.log.Warn().Err(err).Str("symbol", symbol).Float64("price", price).
				Msg("Feed failed, using stale cached quote")
			return price, nil
		}
		return 0, fmt.Errorf("no price for %s: %w: %v", symbol, domain.ErrPriceUnavailable, err)
	}
	return result.(float64), nil
}

// fromCache returns a cached price. maxAge 0 means any age is acceptable.
func (c *Client) fromCache(symbol string, maxAge time.Duration) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.cache[symbol]
	if !ok {
		return 0, false
	}
	if maxAge > 0 && c.clock.Now().Sub(cached.fetchedAt) > maxAge {
		return 0, false
	}
	return cached.price, true
}

type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func (c *Client) fetch(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	quoteURL := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	var price float64
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, quoteURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("feed returned status %d", resp.StatusCode)
			// Client errors will not heal on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var quote quoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
			return fmt.Errorf("failed to parse quote: %w", err)
		}
		if quote.Price <= 0 {
			return backoff.Permanent(fmt.Errorf("feed returned non-positive price %v", quote.Price))
		}
		price = quote.Price
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxRetryElapsed
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.cache[symbol] = cachedQuote{price: price, fetchedAt: c.clock.Now()}
	c.mu.Unlock()

	c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("Quote fetched")
	return price, nil
}
