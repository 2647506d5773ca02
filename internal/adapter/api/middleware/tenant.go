package middleware

import (
	"context"
	"net/http"
)

// TenantHeader carries the caller's tenant identifier.
const TenantHeader = "X-Tenant-Id"

const tenantKey contextKey = "tenant"

// TenantFromContext returns the tenant id extracted by Tenant.
func TenantFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantKey).(string)
	return id, ok
}

// Tenant extracts the tenant id header and stores it in the request context.
// Requests without the header fail with 400; requests whose token claims a
// different tenant fail with 403.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			http.Error(w, "Bad Request: "+TenantHeader+" header required", http.StatusBadRequest)
			return
		}

		if claims, ok := ClaimsFromContext(r.Context()); ok && claims.TenantID != tenantID {
			http.Error(w, "Forbidden: token is not valid for this tenant", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), tenantKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
