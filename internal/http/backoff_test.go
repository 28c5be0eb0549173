package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fabshop-io/stratus-client/internal/constants"
)

func rateLimitedResponse(retryAfterHeader string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{},
	}
	if retryAfterHeader != "" {
		resp.Header.Set("Retry-After", retryAfterHeader)
	}

	return resp
}

func TestBackoff_RateLimited(t *testing.T) {
	t.Parallel()

	client := NewClient("http://stratus.test", nil)

	t.Run("waits at least Retry-After, uncapped", func(t *testing.T) {
		t.Parallel()

		// waitMax is far below the server's demand; the rate-limit
		// wait must win anyway.
		wait := client.backoff(time.Second, 2*time.Second, 0, rateLimitedResponse("7"))

		assert.GreaterOrEqual(t, wait, 7*time.Second)
		assert.Less(t, wait, 7*time.Second+constants.RetryJitterMax)
	})

	t.Run("missing header falls back to the default", func(t *testing.T) {
		t.Parallel()

		wait := client.backoff(time.Second, 30*time.Second, 0, rateLimitedResponse(""))

		assert.GreaterOrEqual(t, wait, constants.DefaultRetryAfter)
		assert.Less(t, wait, constants.DefaultRetryAfter+constants.RetryJitterMax)
	})

	t.Run("unparseable header falls back to the default", func(t *testing.T) {
		t.Parallel()

		for _, header := range []string{"soon", "-3"} {
			wait := client.backoff(time.Second, 30*time.Second, 0, rateLimitedResponse(header))

			assert.GreaterOrEqual(t, wait, constants.DefaultRetryAfter)
		}
	})
}

func TestBackoff_TransientServerErrors(t *testing.T) {
	t.Parallel()

	client := NewClient("http://stratus.test", nil)
	serverError := &http.Response{StatusCode: http.StatusInternalServerError, Header: http.Header{}}

	t.Run("doubles per attempt", func(t *testing.T) {
		t.Parallel()

		waitMin := time.Second
		waitMax := 30 * time.Second

		for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
			wait := client.backoff(waitMin, waitMax, attempt, serverError)

			assert.GreaterOrEqual(t, wait, base)
			assert.Less(t, wait, base+constants.RetryJitterMax)
		}
	})

	t.Run("clamps at waitMax", func(t *testing.T) {
		t.Parallel()

		wait := client.backoff(time.Second, 5*time.Second, 10, serverError)

		assert.Equal(t, 5*time.Second, wait)
	})

	t.Run("connection errors use the exponential path", func(t *testing.T) {
		t.Parallel()

		wait := client.backoff(time.Second, 30*time.Second, 1, nil)

		assert.GreaterOrEqual(t, wait, 2*time.Second)
		assert.Less(t, wait, 2*time.Second+constants.RetryJitterMax)
	})
}
