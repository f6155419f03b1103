package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWriteRateLimitedRoundsUp(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteRateLimited(rr, 1500*time.Millisecond, "slow down")

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	if got := rr.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("unexpected Retry-After: %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: %q", ct)
	}
}
