// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient upstream failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// RetryMaxDelay caps a single backoff wait so that high attempt ceilings
// cannot produce unbounded sleeps.
var RetryMaxDelay = 30 * time.Second

const defaultMaxAttempts = 3

// TransientError marks an upstream failure that is worth retrying:
// a transport error or a non-2xx HTTP status.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient fetch error: %v", e.Err)
	}
	return fmt.Sprintf("transient fetch error: unexpected status %d", e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Err }

// DoWithRetry executes an HTTP request and retries on transport errors and
// non-2xx responses with exponential backoff. The wait before attempt n+1 is
// 2^n * RetryBaseDelay (1 s, 2 s, 4 s, ...), capped at RetryMaxDelay, with
// no jitter.
//
// When maxAttempts is 0 the default (3) is used. A non-2xx response body is
// drained and closed before sleeping. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After the last attempt fails
// the last TransientError is returned.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * RetryBaseDelay
			if backoff > RetryMaxDelay {
				backoff = RetryMaxDelay
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			lastErr = &TransientError{Err: err}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = &TransientError{StatusCode: resp.StatusCode}
	}

	return nil, lastErr
}
