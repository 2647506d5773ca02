package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/user/erp-api/internal/adapter/metrics"
)

// TenantRateLimiter throttles requests per tenant with a token bucket each.
type TenantRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	metrics  *metrics.CategoryMetrics
}

// NewTenantRateLimiter allows rps requests per second with the given burst,
// per tenant.
func NewTenantRateLimiter(rps float64, burst int, m *metrics.CategoryMetrics) *TenantRateLimiter {
	return &TenantRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		metrics:  m,
	}
}

func (l *TenantRateLimiter) limiter(tenantID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[tenantID]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[tenantID] = lim
	}
	return lim
}

// Handler is the middleware. It must run after Tenant, which supplies the
// tenant id; requests without one are not limited.
func (l *TenantRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := TenantFromContext(r.Context())
		if ok && !l.limiter(tenantID).Allow() {
			if l.metrics != nil {
				l.metrics.RateLimitedTotal.Inc()
			}
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
