package utils

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mpapenbr/wrc-timing-go/log"
)

// WaitForHTTPResponse polls url until any HTTP response is received.
// The status code is not checked, an answering server is all we need.
//
//nolint:whitespace // can't make both editor and linter happy
func WaitForHTTPResponse(
	ctx context.Context, url string, timeout time.Duration,
) error {
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for http request",
		log.String("url", url),
		log.String("timeout", timeout.String()))
	cli := &http.Client{Timeout: timeout}
	for time.Now().Before(timeoutReached) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return err
		}
		resp, err := cli.Do(req)
		if err == nil {
			resp.Body.Close()
			log.Debug("http request successful",
				log.String("url", url),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("%s could not be reached after %v", url, timeout)
}

// ParseWait converts the duration flag value. Invalid values yield fallback.
func ParseWait(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn("Invalid duration value. Using default",
			log.String("value", s), log.Duration("default", fallback), log.ErrorField(err))
		return fallback
	}
	return d
}
