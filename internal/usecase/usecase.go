package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/user/erp-api/internal/domain"
)

// CategoryUseCase is the tenant-scoped contract of the category resolution
// engine. All mutating operations only ever touch tenant-private rows, except
// Create with ScopeGlobal which upserts the shared store.
type CategoryUseCase interface {
	ListUnion(ctx context.Context, tenantID string, p ListParams) (*ListResult, error)
	Create(ctx context.Context, tenantID string, p CreateParams) (*CreateResult, error)
	Update(ctx context.Context, tenantID string, ref domain.CategoryRef, p UpdateParams) (*domain.TenantCategory, error)
	Remove(ctx context.Context, tenantID string, ref domain.CategoryRef, force bool) error
	SeedDefaults(ctx context.Context, tenantID string) (*SeedResult, error)
}

// GlobalCategoryAdmin is the privileged capability for managing the shared
// store. Kept separate from CategoryUseCase so the privilege boundary is
// structural, not a permission flag.
type GlobalCategoryAdmin interface {
	DeleteGlobal(ctx context.Context, id uuid.UUID) error
}

// AuthUseCase defines the contract for authentication services.
type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (string, error)
	Impersonate(ctx context.Context, grantToken string) (string, error)
}

// SortField enumerates the columns a listing can be ordered by.
type SortField string

const (
	SortByNom       SortField = "nom"
	SortByCode      SortField = "code"
	SortByType      SortField = "typeGlobal"
	SortByCreatedAt SortField = "createdAt"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListParams carries the query of a merged listing. Zero values fall back to
// page 1, limit 20, sorted by nom ascending.
type ListParams struct {
	Search    string
	Type      domain.CategoryType
	Page      int
	Limit     int
	SortField SortField
	SortDir   SortDirection
}

// Pagination describes the returned page relative to the merged total.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListMeta is the diagnostic summary of a merge.
type ListMeta struct {
	TenantCount int `json:"tenantCount"`
	GlobalCount int `json:"globalCount"`
	UnionCount  int `json:"unionCount"`
}

// ListResult is one page of the merged tenant/global category view.
type ListResult struct {
	Data       []domain.CategoryView `json:"data"`
	Pagination Pagination            `json:"pagination"`
	Meta       ListMeta              `json:"meta"`
}

// CategoryScope selects the target store of a create.
type CategoryScope string

const (
	ScopeTenant CategoryScope = "tenant"
	ScopeGlobal CategoryScope = "globale"
)

// CreateParams carries a category creation request. Code is expected to be
// normalized (uppercase, underscores) by the boundary.
type CreateParams struct {
	Code        string
	Nom         string
	Description string
	Icone       string
	TypeGlobal  domain.CategoryType
	Scope       CategoryScope
}

// CreateResult is the created record tagged with its resolved scope.
type CreateResult struct {
	Scope    CategoryScope       `json:"scope"`
	Category domain.CategoryView `json:"category"`
}

// UpdateParams carries a partial update. Nil fields are left unchanged; code
// and tenant id are immutable and therefore absent.
type UpdateParams struct {
	Nom         *string
	Description *string
	Icone       *string
	TypeGlobal  *domain.CategoryType
}

// SeedResult reports the outcome of seeding the default catalog.
type SeedResult struct {
	Categories []domain.TenantCategory `json:"categories"`
	Created    int                     `json:"created"`
	Existing   int                     `json:"existing"`
}

// UnionCache caches merged listing pages per tenant. Implementations are
// best-effort: a miss or an unavailable backend just means the engine
// recomputes from the store.
type UnionCache interface {
	Get(ctx context.Context, tenantID, key string) (*ListResult, bool)
	Set(ctx context.Context, tenantID, key string, res *ListResult)
	// InvalidateTenant drops cached pages of one tenant; InvalidateAll drops
	// every tenant's pages (used after global-store writes).
	InvalidateTenant(ctx context.Context, tenantID string)
	InvalidateAll(ctx context.Context)
}

// AuditEvent records a category mutation for the audit stream.
type AuditEvent struct {
	Action   string `json:"action"` // category.created, category.updated, ...
	TenantID string `json:"tenant_id,omitempty"`
	Scope    string `json:"scope"`
	Code     string `json:"code,omitempty"`
	ID       string `json:"id,omitempty"`
}

// AuditPublisher publishes category mutation events. Publishing is
// best-effort; failures must not fail the mutation.
type AuditPublisher interface {
	Publish(ctx context.Context, event AuditEvent) error
}
