// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for sinks that talk to a cluster.
package httputil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/canon-engine/internal/logging"
)

// RetryBaseDelay is the first backoff interval. Tests shrink it.
var RetryBaseDelay = 2 * time.Second

// MaxBackoff caps a single wait, including one requested by Retry-After.
var MaxBackoff = 2 * time.Minute

const defaultMaxRetries = 5

// ErrBodyNotReplayable is returned when a request with a body must be
// retried but carries no GetBody.
var ErrBodyNotReplayable = errors.New("request body cannot be replayed")

// Retryable reports whether a response status should be retried: the
// cluster is shedding load (429) or temporarily unavailable (502, 503, 504).
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry sends req and retries retryable statuses with exponential
// backoff starting at RetryBaseDelay. A Retry-After header in seconds
// overrides the computed delay. Request bodies are rebuilt from GetBody
// on each attempt, so requests created with http.NewRequest over a
// bytes.Reader or strings.Reader are safe to retry.
//
// When maxRetries is 0 the default (5) is used. After exhausting retries
// the last response is returned so the caller can inspect it. A cancelled
// context during a wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *slog.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = logging.Discard()
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return nil, ErrBodyNotReplayable
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Warn("retrying request",
			"url", req.URL.String(),
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"wait", wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	wait := RetryBaseDelay << attempt
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}
	if wait > MaxBackoff || wait < 0 {
		wait = MaxBackoff
	}
	return wait
}
