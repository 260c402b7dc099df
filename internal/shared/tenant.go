// Package shared holds cross-cutting request helpers.
package shared

import (
	"context"
	"net/http"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

type contextKey string

const companyIDKey contextKey = "company_id"

// CompanyHeader carries the tenant identifier. Authentication happens in an
// upstream gateway; by the time a request reaches this service the header is
// trusted.
const CompanyHeader = "X-Company-ID"

// CompanyIDFromContext returns the tenant company id for the request.
func CompanyIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(companyIDKey).(string)
	return id
}

// ContextWithCompanyID attaches a tenant company id to the context.
func ContextWithCompanyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, companyIDKey, id)
}

// TenantMiddleware rejects requests without a tenant identifier and makes it
// available on the request context.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := r.Header.Get(CompanyHeader)
		if companyID == "" {
			httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "the "+CompanyHeader+" header is required")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithCompanyID(r.Context(), companyID)))
	})
}
