package httpapi

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	basecache "github.com/riskibarqy/ga-meta/internal/platform/cache"
)

func countingHandler(calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"q":"` + r.URL.RawQuery + `"}`))
	})
}

func TestResponseCache_KeysByQuery(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := ResponseCache(basecache.NewStore(time.Minute), []string{"/v1/meta/"}, countingHandler(&calls))

	for _, target := range []string{"/v1/meta/breakdown?format=standard", "/v1/meta/breakdown?format=standard", "/v1/meta/breakdown?format=limited"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got=%d", rec.Code)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 handler calls for 2 distinct queries, got=%d", calls.Load())
	}
}

func TestResponseCache_BypassesNonGetAndOtherPaths(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := ResponseCache(basecache.NewStore(time.Minute), []string{"/v1/meta/"}, countingHandler(&calls))

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/meta/breakdown", nil),
		httptest.NewRequest(http.MethodPost, "/v1/meta/breakdown", nil),
		httptest.NewRequest(http.MethodGet, "/v1/events", nil),
		httptest.NewRequest(http.MethodGet, "/v1/events", nil),
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get("X-Cache") != "" {
			t.Fatalf("expected no cache header for %s %s, got=%q", req.Method, req.URL.Path, rec.Header().Get("X-Cache"))
		}
	}
	if calls.Load() != 4 {
		t.Fatalf("expected every request to reach the handler, got=%d", calls.Load())
	}
}

func TestResponseCache_NilStoreDisables(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := ResponseCache(nil, []string{"/v1/meta/"}, countingHandler(&calls))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/meta/breakdown", nil))
	}
	if calls.Load() != 2 {
		t.Fatalf("expected no caching with nil store, got=%d calls", calls.Load())
	}
}
