package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/riskibarqy/ga-meta/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDelay   = 500 * time.Millisecond
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20

	// Backoff doubles per attempt up to maxBackoff.
	maxBackoffShift = 16
	maxBackoff      = 5 * time.Minute

	// An open circuit is waited out up to maxCircuitWaits times before the
	// call gives up with a retryable error.
	maxCircuitWaits = 3
	minCircuitPause = 50 * time.Millisecond
)

var errUpstreamTransient = crerr.New("upstream transient failure")

// Config is built once at startup and shared by every upstream client.
type Config struct {
	HTTPClient     *http.Client
	Delay          time.Duration
	Timeout        time.Duration
	MaxRetries     int
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Sleep is swapped out in tests. It must return ctx.Err() when ctx ends first.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Requester runs the rate-limited retry loop shared by the omnidex, omniweb
// and gatcg clients. Each client takes its own view through ForUpstream so a
// failing upstream only trips its own circuit breaker.
type Requester struct {
	httpClient *http.Client
	delay      time.Duration
	timeout    time.Duration
	maxRetries int
	userAgent  string
	logger     *logging.Logger
	upstream   string
	breakerCfg resilience.CircuitBreakerConfig
	breaker    *resilience.CircuitBreaker
	sleep      func(ctx context.Context, d time.Duration) error
	tracer     trace.Tracer
}

func NewRequester(cfg Config) *Requester {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	delay := cfg.Delay
	if delay < 0 {
		delay = defaultDelay
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "ga-meta/1.0"
	}

	r := &Requester{
		httpClient: httpClient,
		delay:      delay,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		userAgent:  userAgent,
		logger:     logger,
		upstream:   "default",
		breakerCfg: resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker),
		sleep:      sleep,
		tracer:     otel.Tracer("ga-meta/internal/platform/fetch"),
	}
	r.breaker = r.newBreaker()
	return r
}

// ForUpstream returns a Requester that shares r's HTTP client and retry
// settings but trips its own circuit breaker.
func (r *Requester) ForUpstream(name string) *Requester {
	scoped := *r
	scoped.upstream = name
	scoped.breaker = scoped.newBreaker()
	return &scoped
}

func (r *Requester) newBreaker() *resilience.CircuitBreaker {
	if !r.breakerCfg.Enabled {
		return nil
	}
	breaker := resilience.NewCircuitBreakerFromConfig(r.breakerCfg)
	upstream := r.upstream
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		r.logger.Warn("upstream circuit breaker state changed", "upstream", upstream, "from", from, "to", to)
	})
	return breaker
}

type result struct {
	status Status
	kind   ErrorKind
	err    error
}

type envelope[T any] struct {
	Data *T `json:"data"`
}

// GetJSON fetches rawURL and decodes the {"data": T | null} envelope.
func GetJSON[T any](ctx context.Context, r *Requester, rawURL string) Outcome[T] {
	var env envelope[T]
	res := r.do(ctx, rawURL, func(body []byte) error {
		return sonic.Unmarshal(body, &env)
	})

	switch res.status {
	case StatusFound:
		if env.Data == nil {
			return Empty[T]()
		}
		return Found(*env.Data)
	case StatusNotFound:
		return NotFound[T]()
	default:
		return Failed[T](res.kind, res.err)
	}
}

func (r *Requester) do(ctx context.Context, rawURL string, decode func([]byte) error) result {
	ctx, span := r.tracer.Start(ctx, "fetch.Requester.Get", trace.WithAttributes(
		attribute.String("url.full", rawURL),
	))
	defer span.End()

	res := r.attempts(ctx, rawURL, decode)
	span.SetAttributes(attribute.String("fetch.status", res.status.String()))
	if res.status == StatusError {
		span.SetAttributes(attribute.String("fetch.error_kind", string(res.kind)))
		span.RecordError(res.err)
		span.SetStatus(codes.Error, string(res.kind))
	}
	return res
}

func (r *Requester) attempts(ctx context.Context, rawURL string, decode func([]byte) error) result {
	if err := r.admit(ctx, rawURL); err != nil {
		if ctx.Err() != nil {
			return result{status: StatusError, kind: ErrorRequestFailed, err: fmt.Errorf("wait for upstream circuit: %w", ctx.Err())}
		}
		r.logger.WarnContext(ctx, "upstream circuit breaker rejected request", "upstream", r.upstream, "url", rawURL)
		return result{status: StatusError, kind: ErrorRetryable, err: crerr.Wrapf(errUpstreamTransient, "upstream %s unavailable: %v", r.upstream, err)}
	}

	var last result
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := r.backoff(attempt)
			r.logger.DebugContext(ctx, "retrying upstream request", "url", rawURL, "attempt", attempt, "backoff", backoff, "error", last.err)
			if err := r.sleep(ctx, backoff); err != nil {
				r.recordBreaker(true)
				return result{status: StatusError, kind: ErrorRequestFailed, err: fmt.Errorf("wait before retry: %w", err)}
			}
		}

		res, retry := r.once(ctx, rawURL, decode)
		if !retry {
			r.recordBreaker(false)
			return res
		}
		last = res
		if ctx.Err() != nil {
			break
		}
	}

	r.recordBreaker(true)
	if ctx.Err() != nil {
		return result{status: StatusError, kind: ErrorRequestFailed, err: fmt.Errorf("request aborted: %w", ctx.Err())}
	}
	r.logger.WarnContext(ctx, "upstream request failed after retries", "url", rawURL, "attempts", r.maxRetries+1, "kind", last.kind, "error", last.err)
	return last
}

// admit blocks until the breaker lets a call through. An open circuit is
// waited out instead of being reported as an immediate failure.
func (r *Requester) admit(ctx context.Context, rawURL string) error {
	if r.breaker == nil {
		return nil
	}
	for wait := 0; ; wait++ {
		err := r.breaker.Allow()
		if err == nil || wait >= maxCircuitWaits {
			return err
		}
		pause := r.breaker.OpenRemaining()
		if pause <= 0 {
			pause = max(r.delay, minCircuitPause)
		}
		r.logger.DebugContext(ctx, "waiting for upstream circuit", "upstream", r.upstream, "url", rawURL, "wait", pause)
		if err := r.sleep(ctx, pause); err != nil {
			return err
		}
	}
}

// backoff is delay * 2^attempt, capped at maxBackoff.
func (r *Requester) backoff(attempt int) time.Duration {
	shift := min(attempt, maxBackoffShift)
	if r.delay > maxBackoff>>shift {
		return maxBackoff
	}
	return r.delay << shift
}

// once performs a single attempt. retry reports whether the loop may try again.
func (r *Requester) once(ctx context.Context, rawURL string, decode func([]byte) error) (res result, retry bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return result{status: StatusError, kind: ErrorRequestFailed, err: fmt.Errorf("build request: %w", err)}, false
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return result{status: StatusError, kind: ErrorRequestFailed, err: ctx.Err()}, false
		}
		if isTimeout(err) {
			return result{status: StatusError, kind: ErrorRetryable, err: crerr.Wrapf(errUpstreamTransient, "timeout: %s", redactURLError(err))}, true
		}
		// Resets, refused connections and early EOFs are transient network failures.
		return result{status: StatusError, kind: ErrorRetryable, err: crerr.Wrapf(errUpstreamTransient, "send request: %s", redactURLError(err))}, true
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return result{status: StatusError, kind: ErrorRetryable, err: crerr.Wrapf(errUpstreamTransient, "read body timeout: %v", err)}, true
		}
		if ctx.Err() != nil {
			return result{status: StatusError, kind: ErrorRequestFailed, err: ctx.Err()}, false
		}
		return result{status: StatusError, kind: ErrorRetryable, err: crerr.Wrapf(errUpstreamTransient, "read response body: %v", err)}, true
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_ = r.sleep(ctx, r.delay)
		if err := decode(buf.B); err != nil {
			r.logger.WarnContext(ctx, "decode upstream payload failed", "url", rawURL, "error", err)
			return result{status: StatusError, kind: ErrorDeserialization, err: fmt.Errorf("decode payload: %w", err)}, false
		}
		return result{status: StatusFound}, false
	case resp.StatusCode == http.StatusNotFound:
		_ = r.sleep(ctx, r.delay)
		return result{status: StatusNotFound}, false
	case isRetryableStatus(resp.StatusCode):
		return result{status: StatusError, kind: ErrorRetryable, err: crerr.Wrapf(errUpstreamTransient, "status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))}, true
	default:
		return result{status: StatusError, kind: ErrorFatal, err: fmt.Errorf("upstream status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))}, false
	}
}

func (r *Requester) recordBreaker(failed bool) {
	if r.breaker == nil {
		return
	}
	r.breaker.Record(failed)
}

// IsTransient reports whether err came out of the retry loop as a transient upstream failure.
func IsTransient(err error) bool {
	return crerr.Is(err, errUpstreamTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func redactURLError(err error) string {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Op + ": " + urlErr.Err.Error()
	}
	return err.Error()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
