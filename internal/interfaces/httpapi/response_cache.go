package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	basecache "github.com/riskibarqy/ga-meta/internal/platform/cache"
	"github.com/valyala/bytebufferpool"
)

const responseCachePrefix = "http:"

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// ResponseCache serves repeated successful GETs under the given path prefixes
// from store, keyed by path and raw query. A nil store disables it.
func ResponseCache(store *basecache.Store, prefixes []string, next http.Handler) http.Handler {
	if store == nil {
		return next
	}
	maxAge := "public, max-age=" + strconv.Itoa(int(store.TTL().Seconds()))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.ResponseCache")
		defer span.End()

		if r.Method != http.MethodGet || !hasAnyPrefix(r.URL.Path, prefixes) {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		key := responseCacheKey(r)
		if v, ok := store.Get(ctx, key); ok {
			if cached, ok := v.(cachedResponse); ok {
				w.Header().Set("Content-Type", cached.contentType)
				w.Header().Set("Cache-Control", maxAge)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.status)
				_, _ = w.Write(cached.body)
				return
			}
		}

		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		rec := &bufferingWriter{ResponseWriter: w, buf: buf, status: http.StatusOK}
		rec.Header().Set("X-Cache", "MISS")
		rec.Header().Set("Cache-Control", maxAge)
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == http.StatusOK {
			store.Set(ctx, key, cachedResponse{
				status:      rec.status,
				contentType: rec.Header().Get("Content-Type"),
				body:        append([]byte(nil), buf.B...),
			})
		}
	})
}

func responseCacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return responseCachePrefix + r.URL.Path
	}
	return responseCachePrefix + r.URL.Path + "?" + r.URL.RawQuery
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bufferingWriter tees the response body so it can be stored after the handler returns.
type bufferingWriter struct {
	http.ResponseWriter
	buf    *bytebufferpool.ByteBuffer
	status int
}

func (w *bufferingWriter) WriteHeader(status int) {
	w.status = status
	if status != http.StatusOK {
		w.Header().Del("Cache-Control")
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *bufferingWriter) Write(p []byte) (int, error) {
	_, _ = w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}
