// internal/adapters/upstream/caller.go
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stayscore/internal/adapters/observability"
)

var (
	ErrNotFound     = errors.New("upstream: not found")
	ErrUnauthorized = errors.New("upstream: unauthorized")
	ErrRateLimited  = errors.New("upstream: rate limited")
)

// caller is the shared outbound HTTP plumbing for every channel adapter:
// API-key header, client-side politeness limiter, JSON decode. One attempt
// per call; refresh semantics live with the caller (force re-fetch), not here.
type caller struct {
	service string // metrics label
	base    string
	key     string
	hc      *http.Client
	rl      *rate.Limiter
}

func newCaller(service, base, key string) *caller {
	return &caller{
		service: service,
		base:    strings.TrimRight(base, "/"),
		key:     key,
		hc:      &http.Client{Timeout: 20 * time.Second},
		rl:      rate.NewLimiter(rate.Limit(5), 5),
	}
}

// getJSON performs a GET on base+path and decodes the body into out.
// Non-JSON bodies (rate-limit HTML pages and the like) surface as decode
// errors, which adapters treat as soft failures.
func (c *caller) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stayscore/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveChannel(c.service, path, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveChannel(c.service, path, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode %s: %w", c.service, path, err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: bad status %d: %s", c.service, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }
func pint(i int) *int           { return &i }

// mean averages ratings, skipping non-positive entries that some platforms
// emit for deleted reviews.
func mean(ratings []float64) *float64 {
	var sum float64
	var n int
	for _, r := range ratings {
		if r <= 0 {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}
