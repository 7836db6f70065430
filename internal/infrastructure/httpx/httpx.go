package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 1 * time.Second
	maxErrorBody           = 64 << 10
)

// StatusError is a non-2xx response. Body is the upstream payload verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt (5xx, 429).
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// DecodeError means a 2xx body could not be decoded.
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

type Client struct {
	HTTP   *http.Client
	Header http.Header
	// MaxRetries bounds additional attempts after the first; zero disables retry.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DoJSON sends req and decodes a 2xx body into out. Network errors, 5xx and 429
// are retried with jittered exponential backoff; other statuses are returned at once.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req = req.WithContext(ctx)

	op := func() error {
		resp, err := hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			serr := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
			if serr.Retryable() {
				return serr
			}
			return backoff.Permanent(serr)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(&DecodeError{Err: err})
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("upstream_retry", zap.String("url", req.URL.Redacted()), zap.Duration("wait", wait), zap.Error(err))
	}
	return backoff.RetryNotify(op, c.backoff(ctx), notify)
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = defaultInitialInterval
	if c.InitialInterval > 0 {
		exp.InitialInterval = c.InitialInterval
	}
	exp.MaxInterval = defaultMaxInterval
	if c.MaxInterval > 0 {
		exp.MaxInterval = c.MaxInterval
	}
	exp.RandomizationFactor = 0.5
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}
