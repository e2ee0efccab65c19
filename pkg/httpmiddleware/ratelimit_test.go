package httpmiddleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func rateLimited(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return RateLimitWithCleanup(ctx, cfg)(okHandler())
}

func hitCatalog(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	h := rateLimited(t, RateLimitConfig{Max: 3, Window: time.Minute})

	for i := range 3 {
		w := hitCatalog(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}

	w := hitCatalog(h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_RejectionCarriesErrorEnvelope(t *testing.T) {
	h := rateLimited(t, RateLimitConfig{Max: 1, Window: time.Minute})

	hitCatalog(h, "10.0.0.1:1234")
	w := hitCatalog(h, "10.0.0.1:1234")

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Same envelope shape the API handlers use for their errors.
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, "rate limit exceeded", body.Message)
}

func TestRateLimit_RemainingCountsDown(t *testing.T) {
	h := rateLimited(t, RateLimitConfig{Max: 3, Window: time.Minute})

	for _, want := range []string{"2", "1", "0"} {
		w := hitCatalog(h, "10.0.0.1:1234")
		assert.Equal(t, want, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_ClientsHaveSeparateBudgets(t *testing.T) {
	h := rateLimited(t, RateLimitConfig{Max: 1, Window: time.Minute})

	assert.Equal(t, http.StatusOK, hitCatalog(h, "10.0.0.1:1234").Code)
	// Same host on another port shares the budget.
	assert.Equal(t, http.StatusTooManyRequests, hitCatalog(h, "10.0.0.1:5678").Code)
	assert.Equal(t, http.StatusOK, hitCatalog(h, "10.0.0.2:1234").Code)
}

func TestRateLimit_PrincipalKeyFunc(t *testing.T) {
	// Checkout traffic is keyed on the caller's identity rather than the
	// address, so a customer cannot widen their budget by rotating IPs.
	h := rateLimited(t, RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			return r.Header.Get("X-Principal-ID")
		},
	})

	order := func(principal, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/order", nil)
		req.Header.Set("X-Principal-ID", principal)
		req.Header.Set("X-Principal-Role", "customer")
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, order("cust-demo", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, order("cust-demo", "10.0.0.9:1234").Code)
	assert.Equal(t, http.StatusOK, order("cust-demo2", "10.0.0.1:1234").Code)
}

func TestRateLimit_ForwardedClientIP(t *testing.T) {
	h := rateLimited(t, RateLimitConfig{Max: 1, Window: time.Minute})

	forwarded := func(xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
		req.Header.Set("X-Forwarded-For", xff)
		req.RemoteAddr = "172.16.0.1:80" // the proxy, not the client
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	// The first X-Forwarded-For entry identifies the client.
	assert.Equal(t, http.StatusOK, forwarded("203.0.113.7, 172.16.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, forwarded("203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, forwarded("203.0.113.8, 172.16.0.1").Code)
}

func TestLimiter_WindowSlides(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	base := time.Unix(1200, 0) // aligned to the window for a stable rotation

	for range 2 {
		_, _, ok := l.take("cust-demo", base)
		require.True(t, ok)
	}
	_, _, ok := l.take("cust-demo", base)
	require.False(t, ok)

	// Half a window later the old requests still weigh in at 50%, leaving
	// room for exactly one more.
	later := base.Add(90 * time.Second)
	_, _, ok = l.take("cust-demo", later)
	assert.True(t, ok)
	_, _, ok = l.take("cust-demo", later)
	assert.False(t, ok)

	// Two full windows later the history is gone.
	_, _, ok = l.take("cust-demo", base.Add(3*time.Minute))
	assert.True(t, ok)
}

func TestLimiter_EvictsIdleClients(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 5, Window: time.Minute})
	now := time.Unix(1200, 0)

	l.take("cust-demo", now)
	l.take("dp-demo", now.Add(90*time.Second))

	l.evict(now.Add(2 * time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.byKey, "cust-demo")
	assert.Contains(t, l.byKey, "dp-demo")
}
