package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/user/erp-api/internal/adapter/api/middleware"
	"github.com/user/erp-api/internal/domain"
	"github.com/user/erp-api/internal/pkg/config"
	"github.com/user/erp-api/internal/pkg/token"
	"github.com/user/erp-api/internal/usecase"
)

const testSecret = "router-test-secret"

type stubCategoryUseCase struct{}

func (stubCategoryUseCase) ListUnion(ctx context.Context, tenantID string, p usecase.ListParams) (*usecase.ListResult, error) {
	return &usecase.ListResult{Data: []domain.CategoryView{}}, nil
}

func (stubCategoryUseCase) Create(ctx context.Context, tenantID string, p usecase.CreateParams) (*usecase.CreateResult, error) {
	return &usecase.CreateResult{Scope: p.Scope}, nil
}

func (stubCategoryUseCase) Update(ctx context.Context, tenantID string, ref domain.CategoryRef, p usecase.UpdateParams) (*domain.TenantCategory, error) {
	return &domain.TenantCategory{ID: ref.ID, TenantID: tenantID}, nil
}

func (stubCategoryUseCase) Remove(ctx context.Context, tenantID string, ref domain.CategoryRef, force bool) error {
	return nil
}

func (stubCategoryUseCase) SeedDefaults(ctx context.Context, tenantID string) (*usecase.SeedResult, error) {
	return &usecase.SeedResult{}, nil
}

type stubGlobalAdmin struct{}

func (stubGlobalAdmin) DeleteGlobal(ctx context.Context, id uuid.UUID) error { return nil }

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, email, password string) (string, error) {
	return "a-token", nil
}

func (stubAuth) Impersonate(ctx context.Context, grantToken string) (string, error) {
	return "a-token", nil
}

func newRouterUnderTest() http.Handler {
	cfg := &config.Config{
		JWTSecret:        testSecret,
		TenantRatePerSec: 1000,
		TenantRateBurst:  1000,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, logger, nil, stubCategoryUseCase{}, stubGlobalAdmin{}, stubAuth{})
}

func sessionToken(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, err := token.Generate(&domain.User{ID: uuid.New(), TenantID: "t1", Role: role}, nil, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func TestRouter_AuthChain(t *testing.T) {
	router := newRouterUnderTest()

	tests := []struct {
		name           string
		method         string
		target         string
		token          string
		tenantHeader   string
		expectedStatus int
	}{
		{
			name:           "Health Is Public",
			method:         http.MethodGet,
			target:         "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Login Is Public",
			method:         http.MethodPost,
			target:         "/api/v1/auth/login",
			expectedStatus: http.StatusBadRequest, // no body, but past auth
		},
		{
			name:           "Categories Require Token",
			method:         http.MethodGet,
			target:         "/api/v1/categories",
			tenantHeader:   "t1",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Categories Require Tenant Header",
			method:         http.MethodGet,
			target:         "/api/v1/categories",
			token:          sessionToken(t, domain.RoleMember),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Tenant Mismatch Forbidden",
			method:         http.MethodGet,
			target:         "/api/v1/categories",
			token:          sessionToken(t, domain.RoleMember),
			tenantHeader:   "t2",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Member Lists Categories",
			method:         http.MethodGet,
			target:         "/api/v1/categories",
			token:          sessionToken(t, domain.RoleMember),
			tenantHeader:   "t1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Member Cannot Reach Admin Surface",
			method:         http.MethodDelete,
			target:         "/api/v1/admin/global-categories/" + uuid.NewString(),
			token:          sessionToken(t, domain.RoleMember),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Admin Deletes Global Category",
			method:         http.MethodDelete,
			target:         "/api/v1/admin/global-categories/" + uuid.NewString(),
			token:          sessionToken(t, domain.RoleAdmin),
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.tenantHeader != "" {
				req.Header.Set(middleware.TenantHeader, tt.tenantHeader)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRouter_GrantTokenIsNotASession(t *testing.T) {
	router := newRouterUnderTest()

	grant, err := token.GenerateImpersonationGrant(uuid.New(), uuid.New(), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate grant: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer "+grant)
	req.Header.Set(middleware.TenantHeader, "t1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}
