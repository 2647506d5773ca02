package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/user/erp-api/internal/adapter/metrics"
	"github.com/user/erp-api/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// CategoryService implements CategoryUseCase: the merged tenant/global
// category view and its tenant-scoped write path.
type CategoryService struct {
	tenantRepo  domain.TenantCategoryRepository
	globalRepo  domain.GlobalCategoryRepository
	expenseRepo domain.ExpenseRepository
	cache       UnionCache
	audit       AuditPublisher
	metrics     *metrics.CategoryMetrics
	logger      *slog.Logger
}

// NewCategoryService creates a CategoryService. cache, audit and m may be nil;
// the corresponding concerns are then skipped.
func NewCategoryService(
	tenantRepo domain.TenantCategoryRepository,
	globalRepo domain.GlobalCategoryRepository,
	expenseRepo domain.ExpenseRepository,
	cache UnionCache,
	audit AuditPublisher,
	m *metrics.CategoryMetrics,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		tenantRepo:  tenantRepo,
		globalRepo:  globalRepo,
		expenseRepo: expenseRepo,
		cache:       cache,
		audit:       audit,
		metrics:     m,
		logger:      logger,
	}
}

func (s *CategoryService) normalize(p ListParams) ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	switch p.SortField {
	case SortByNom, SortByCode, SortByType, SortByCreatedAt:
	default:
		p.SortField = SortByNom
	}
	if p.SortDir != SortDesc {
		p.SortDir = SortAsc
	}
	return p
}

func cacheKey(p ListParams) string {
	return fmt.Sprintf("s=%s|t=%s|p=%d|l=%d|f=%s|d=%s",
		strings.ToLower(p.Search), p.Type, p.Page, p.Limit, p.SortField, p.SortDir)
}

// ListUnion returns one page of the deduplicated union of tenant-private and
// global categories, keyed by code, tenant rows overriding global rows.
func (s *CategoryService) ListUnion(ctx context.Context, tenantID string, p ListParams) (*ListResult, error) {
	ctx, span := otel.Tracer("category-service").Start(ctx, "ListUnion")
	defer span.End()

	p = s.normalize(p)

	key := cacheKey(p)
	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, tenantID, key); ok {
			if s.metrics != nil {
				s.metrics.UnionCacheHits.Inc()
			}
			return res, nil
		}
		if s.metrics != nil {
			s.metrics.UnionCacheMisses.Inc()
		}
	}

	filter := domain.CategoryFilter{Search: p.Search, Type: p.Type}
	tenantRows, err := s.tenantRepo.FindActive(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tenant categories: %w", err)
	}
	globalRows, err := s.globalRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list global categories: %w", err)
	}

	// Global rows first, tenant rows after: the overwrite is what implements
	// override-by-tenant.
	merged := make(map[string]domain.CategoryView, len(tenantRows)+len(globalRows))
	for _, g := range globalRows {
		merged[g.Code] = domain.ViewOfGlobal(g)
	}
	for _, t := range tenantRows {
		merged[t.Code] = domain.ViewOfTenant(t)
	}

	views := make([]domain.CategoryView, 0, len(merged))
	for _, v := range merged {
		views = append(views, v)
	}
	sortViews(views, p.SortField, p.SortDir)

	total := len(views)
	pages := (total + p.Limit - 1) / p.Limit
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	res := &ListResult{
		Data: views[start:end],
		Pagination: Pagination{
			Page:  p.Page,
			Limit: p.Limit,
			Total: total,
			Pages: pages,
		},
		Meta: ListMeta{
			TenantCount: len(tenantRows),
			GlobalCount: len(globalRows),
			UnionCount:  total,
		},
	}

	if s.cache != nil {
		s.cache.Set(ctx, tenantID, key, res)
	}
	if s.metrics != nil {
		s.metrics.OperationsTotal.WithLabelValues("list", "ok").Inc()
	}
	return res, nil
}

// sortViews orders the merged list. Textual fields compare case-insensitively;
// code breaks ties so pagination is stable across calls.
func sortViews(views []domain.CategoryView, field SortField, dir SortDirection) {
	less := func(a, b domain.CategoryView) bool {
		var cmp int
		switch field {
		case SortByCode:
			cmp = strings.Compare(strings.ToLower(a.Code), strings.ToLower(b.Code))
		case SortByType:
			cmp = strings.Compare(string(a.TypeGlobal), string(b.TypeGlobal))
		case SortByCreatedAt:
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				cmp = -1
			case a.CreatedAt.After(b.CreatedAt):
				cmp = 1
			}
		default: // SortByNom
			cmp = strings.Compare(strings.ToLower(a.Nom), strings.ToLower(b.Nom))
		}
		if cmp == 0 {
			cmp = strings.Compare(a.Code, b.Code)
		}
		if dir == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.Slice(views, func(i, j int) bool { return less(views[i], views[j]) })
}

// Create inserts a tenant-private category, or upserts the shared store when
// the requested scope is global. A tenant row and a global row may share a
// code; the tenant row wins at read time.
func (s *CategoryService) Create(ctx context.Context, tenantID string, p CreateParams) (*CreateResult, error) {
	ctx, span := otel.Tracer("category-service").Start(ctx, "Create")
	defer span.End()

	if p.Code == "" || p.Nom == "" {
		return nil, fmt.Errorf("%w: code and nom are required", domain.ErrInvalidInput)
	}
	if !p.TypeGlobal.Valid() {
		return nil, fmt.Errorf("unknown category type %q: %w", p.TypeGlobal, domain.ErrInvalidInput)
	}
	if p.Scope == "" {
		p.Scope = ScopeTenant
	}

	now := time.Now().UTC()

	if p.Scope == ScopeGlobal {
		row, err := s.globalRepo.Upsert(ctx, &domain.GlobalCategory{
			ID:          uuid.New(),
			Code:        p.Code,
			Nom:         p.Nom,
			Description: p.Description,
			Icone:       p.Icone,
			TypeGlobal:  p.TypeGlobal,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			s.countOp("create", "error")
			return nil, fmt.Errorf("upsert global category: %w", err)
		}
		s.invalidateAll(ctx)
		s.publish(ctx, AuditEvent{Action: "category.created", Scope: string(ScopeGlobal), Code: row.Code, ID: row.ID.String()})
		s.countOp("create", "ok")
		return &CreateResult{Scope: ScopeGlobal, Category: domain.ViewOfGlobal(*row)}, nil
	}

	row := &domain.TenantCategory{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Code:        p.Code,
		Nom:         p.Nom,
		Description: p.Description,
		Icone:       p.Icone,
		TypeGlobal:  p.TypeGlobal,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Uniqueness is the store's partial unique index; a duplicate surfaces
	// here as ErrConflict, there is no read-then-write window.
	if err := s.tenantRepo.Insert(ctx, row); err != nil {
		s.countOp("create", "error")
		return nil, fmt.Errorf("category code %q: %w", p.Code, err)
	}
	s.invalidateTenant(ctx, tenantID)
	s.publish(ctx, AuditEvent{Action: "category.created", TenantID: tenantID, Scope: string(ScopeTenant), Code: row.Code, ID: row.ID.String()})
	s.countOp("create", "ok")
	return &CreateResult{Scope: ScopeTenant, Category: domain.ViewOfTenant(*row)}, nil
}

// Update applies a partial update to an active tenant row. Global-sourced
// references are rejected; code and tenant id never change.
func (s *CategoryService) Update(ctx context.Context, tenantID string, ref domain.CategoryRef, p UpdateParams) (*domain.TenantCategory, error) {
	ctx, span := otel.Tracer("category-service").Start(ctx, "Update")
	defer span.End()

	if ref.Source == domain.SourceGlobal {
		s.countOp("update", "rejected")
		return nil, domain.ErrGlobalReadOnly
	}

	row, err := s.tenantRepo.FindByID(ctx, ref.ID, tenantID)
	if err != nil {
		s.countOp("update", "error")
		return nil, fmt.Errorf("find category %s: %w", ref.ID, err)
	}

	if p.Nom != nil {
		row.Nom = *p.Nom
	}
	if p.Description != nil {
		row.Description = *p.Description
	}
	if p.Icone != nil {
		row.Icone = *p.Icone
	}
	if p.TypeGlobal != nil {
		if !p.TypeGlobal.Valid() {
			return nil, fmt.Errorf("unknown category type %q: %w", *p.TypeGlobal, domain.ErrInvalidInput)
		}
		row.TypeGlobal = *p.TypeGlobal
	}
	row.UpdatedAt = time.Now().UTC()

	if err := s.tenantRepo.Update(ctx, row); err != nil {
		s.countOp("update", "error")
		return nil, fmt.Errorf("update category %s: %w", ref.ID, err)
	}
	s.invalidateTenant(ctx, tenantID)
	s.publish(ctx, AuditEvent{Action: "category.updated", TenantID: tenantID, Scope: string(ScopeTenant), Code: row.Code, ID: row.ID.String()})
	s.countOp("update", "ok")
	return row, nil
}

// Remove soft-deletes an active tenant row. Unless force is set, removal is
// blocked while expense rows still reference the category's code.
func (s *CategoryService) Remove(ctx context.Context, tenantID string, ref domain.CategoryRef, force bool) error {
	ctx, span := otel.Tracer("category-service").Start(ctx, "Remove")
	defer span.End()

	if ref.Source == domain.SourceGlobal {
		s.countOp("remove", "rejected")
		return domain.ErrGlobalReadOnly
	}

	row, err := s.tenantRepo.FindByID(ctx, ref.ID, tenantID)
	if err != nil {
		s.countOp("remove", "error")
		return fmt.Errorf("find category %s: %w", ref.ID, err)
	}

	if !force {
		n, err := s.expenseRepo.CountByCategoryCode(ctx, tenantID, row.Code)
		if err != nil {
			s.countOp("remove", "error")
			return fmt.Errorf("count expenses for %q: %w", row.Code, err)
		}
		if n > 0 {
			s.countOp("remove", "rejected")
			return fmt.Errorf("category %q has %d expense(s): %w", row.Code, n, domain.ErrCategoryInUse)
		}
	}

	if err := s.tenantRepo.SoftDelete(ctx, ref.ID, tenantID); err != nil {
		s.countOp("remove", "error")
		return fmt.Errorf("soft delete category %s: %w", ref.ID, err)
	}
	s.invalidateTenant(ctx, tenantID)
	s.publish(ctx, AuditEvent{Action: "category.deleted", TenantID: tenantID, Scope: string(ScopeTenant), Code: row.Code, ID: row.ID.String()})
	s.countOp("remove", "ok")
	return nil
}

// SeedDefaults inserts the default catalog for a tenant, skipping codes that
// already have an active row. Safe to call repeatedly.
func (s *CategoryService) SeedDefaults(ctx context.Context, tenantID string) (*SeedResult, error) {
	ctx, span := otel.Tracer("category-service").Start(ctx, "SeedDefaults")
	defer span.End()

	res := &SeedResult{}
	now := time.Now().UTC()
	for _, def := range DefaultCategories {
		existing, err := s.tenantRepo.FindActiveByCode(ctx, tenantID, def.Code)
		if err == nil {
			res.Categories = append(res.Categories, *existing)
			res.Existing++
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("check default %q: %w", def.Code, err)
		}

		row := &domain.TenantCategory{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Code:       def.Code,
			Nom:        def.Nom,
			Icone:      def.Icone,
			TypeGlobal: def.TypeGlobal,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.tenantRepo.Insert(ctx, row); err != nil {
			// A concurrent seed may have won the insert; treat the code as
			// pre-existing rather than failing the whole run.
			if errors.Is(err, domain.ErrConflict) {
				if got, ferr := s.tenantRepo.FindActiveByCode(ctx, tenantID, def.Code); ferr == nil {
					res.Categories = append(res.Categories, *got)
					res.Existing++
					continue
				}
			}
			return nil, fmt.Errorf("seed default %q: %w", def.Code, err)
		}
		res.Categories = append(res.Categories, *row)
		res.Created++
	}

	if res.Created > 0 {
		s.invalidateTenant(ctx, tenantID)
		s.publish(ctx, AuditEvent{Action: "category.seeded", TenantID: tenantID, Scope: string(ScopeTenant)})
	}
	s.countOp("seed", "ok")
	return res, nil
}

func (s *CategoryService) invalidateTenant(ctx context.Context, tenantID string) {
	if s.cache != nil {
		s.cache.InvalidateTenant(ctx, tenantID)
	}
}

func (s *CategoryService) invalidateAll(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}

func (s *CategoryService) publish(ctx context.Context, ev AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish audit event", "action", ev.Action, "error", err)
	}
}

func (s *CategoryService) countOp(op, status string) {
	if s.metrics != nil {
		s.metrics.OperationsTotal.WithLabelValues(op, status).Inc()
	}
}

// GlobalAdminService implements GlobalCategoryAdmin: the unconditional,
// privileged delete path for the shared store.
type GlobalAdminService struct {
	globalRepo domain.GlobalCategoryRepository
	cache      UnionCache
	audit      AuditPublisher
	logger     *slog.Logger
}

func NewGlobalAdminService(globalRepo domain.GlobalCategoryRepository, cache UnionCache, audit AuditPublisher, logger *slog.Logger) *GlobalAdminService {
	return &GlobalAdminService{globalRepo: globalRepo, cache: cache, audit: audit, logger: logger}
}

// DeleteGlobal hard-deletes a global category. Unlike the tenant path there
// is no soft delete and no in-use check.
func (s *GlobalAdminService) DeleteGlobal(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("category-service").Start(ctx, "DeleteGlobal")
	defer span.End()

	if err := s.globalRepo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("hard delete global category %s: %w", id, err)
	}
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
	if s.audit != nil {
		if err := s.audit.Publish(ctx, AuditEvent{Action: "category.deleted", Scope: string(ScopeGlobal), ID: id.String()}); err != nil {
			s.logger.Warn("failed to publish audit event", "action", "category.deleted", "error", err)
		}
	}
	return nil
}
