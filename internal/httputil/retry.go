// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by every upstream
// capability: rate limiting, retry with exponential backoff, and a common
// User-Agent.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pokerouter/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxRetries = 3

// Client wraps an *http.Client with a token-bucket limiter and retry
// policy. It is safe for concurrent use and meant to be shared across
// requests.
type Client struct {
	HTTP       *http.Client
	Limiter    *rate.Limiter
	MaxRetries int
	UserAgent  string

	// Timeout bounds one Do call, retries and body read included. Zero
	// leaves the caller's deadline alone.
	Timeout time.Duration
}

// NewClient builds a Client from cfg. The timeout is applied through the
// context, not through http.Client.Timeout, so that it surfaces as
// context.DeadlineExceeded.
func NewClient(cfg types.HTTPConfig) *Client {
	c := &Client{
		HTTP:       &http.Client{},
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// Retryable reports whether an HTTP status is worth retrying.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Do executes req, waiting on the limiter before every attempt and retrying
// retryable statuses with exponential backoff (RetryBaseDelay, doubling).
// Requests with a body must be rewindable (GetBody set), which is the case
// for bodies built from bytes.Reader or strings.Reader.
//
// After exhausting retries the last response is returned so the caller can
// inspect its status. If the context ends during a wait, ctx.Err() is
// returned. With Timeout set, the deadline holds until the response body
// is closed.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.Timeout <= 0 {
		return c.do(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	resp, err := c.do(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the per-call context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	for attempt := 0; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		attemptReq, err := rewind(ctx, req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// rewind clones req for the given attempt, re-opening the body after the
// first attempt.
func rewind(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	clone := req.Clone(ctx)
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body for %s cannot be replayed", req.URL)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
