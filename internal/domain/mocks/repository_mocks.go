package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/erp-api/internal/domain"
)

func matchesFilter(code, nom string, typ domain.CategoryType, f domain.CategoryFilter) bool {
	if f.Type != "" && typ != f.Type {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(code), needle) && !strings.Contains(strings.ToLower(nom), needle) {
			return false
		}
	}
	return true
}

// MockTenantCategoryRepository is an in-memory implementation of
// domain.TenantCategoryRepository for testing. It enforces the same active
// (tenant_id, code) uniqueness the real store's partial index provides.
type MockTenantCategoryRepository struct {
	mu   sync.Mutex
	Rows map[uuid.UUID]domain.TenantCategory

	FindErr   error
	InsertErr error
	UpdateErr error
	DeleteErr error
}

func NewMockTenantCategoryRepository() *MockTenantCategoryRepository {
	return &MockTenantCategoryRepository{Rows: make(map[uuid.UUID]domain.TenantCategory)}
}

func (m *MockTenantCategoryRepository) FindActive(ctx context.Context, tenantID string, f domain.CategoryFilter) ([]domain.TenantCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var out []domain.TenantCategory
	for _, row := range m.Rows {
		if row.TenantID == tenantID && row.IsActive && matchesFilter(row.Code, row.Nom, row.TypeGlobal, f) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MockTenantCategoryRepository) FindByID(ctx context.Context, id uuid.UUID, tenantID string) (*domain.TenantCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	row, ok := m.Rows[id]
	if !ok || row.TenantID != tenantID || !row.IsActive {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (m *MockTenantCategoryRepository) FindActiveByCode(ctx context.Context, tenantID, code string) (*domain.TenantCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, row := range m.Rows {
		if row.TenantID == tenantID && row.Code == code && row.IsActive {
			return &row, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTenantCategoryRepository) Insert(ctx context.Context, c *domain.TenantCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	for _, row := range m.Rows {
		if row.TenantID == c.TenantID && row.Code == c.Code && row.IsActive {
			return domain.ErrConflict
		}
	}
	m.Rows[c.ID] = *c
	return nil
}

func (m *MockTenantCategoryRepository) Update(ctx context.Context, c *domain.TenantCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Rows[c.ID]; !ok {
		return domain.ErrNotFound
	}
	m.Rows[c.ID] = *c
	return nil
}

func (m *MockTenantCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	row, ok := m.Rows[id]
	if !ok || row.TenantID != tenantID || !row.IsActive {
		return domain.ErrNotFound
	}
	row.IsActive = false
	row.UpdatedAt = time.Now().UTC()
	m.Rows[id] = row
	return nil
}

// MockGlobalCategoryRepository is an in-memory implementation of
// domain.GlobalCategoryRepository. Upsert is keyed by code, like the real
// store's ON CONFLICT clause.
type MockGlobalCategoryRepository struct {
	mu   sync.Mutex
	Rows map[uuid.UUID]domain.GlobalCategory

	FindErr   error
	UpsertErr error
	DeleteErr error

	HardDeleted []uuid.UUID
}

func NewMockGlobalCategoryRepository() *MockGlobalCategoryRepository {
	return &MockGlobalCategoryRepository{Rows: make(map[uuid.UUID]domain.GlobalCategory)}
}

func (m *MockGlobalCategoryRepository) FindActive(ctx context.Context, f domain.CategoryFilter) ([]domain.GlobalCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var out []domain.GlobalCategory
	for _, row := range m.Rows {
		if row.IsActive && matchesFilter(row.Code, row.Nom, row.TypeGlobal, f) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MockGlobalCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.GlobalCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	row, ok := m.Rows[id]
	if !ok || !row.IsActive {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (m *MockGlobalCategoryRepository) Upsert(ctx context.Context, c *domain.GlobalCategory) (*domain.GlobalCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	for id, row := range m.Rows {
		if row.Code == c.Code && row.IsActive {
			row.Nom = c.Nom
			row.Description = c.Description
			row.Icone = c.Icone
			row.TypeGlobal = c.TypeGlobal
			row.UpdatedAt = time.Now().UTC()
			m.Rows[id] = row
			return &row, nil
		}
	}
	m.Rows[c.ID] = *c
	row := m.Rows[c.ID]
	return &row, nil
}

func (m *MockGlobalCategoryRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Rows, id)
	m.HardDeleted = append(m.HardDeleted, id)
	return nil
}

// MockExpenseRepository returns canned reference counts keyed by
// tenantID+"/"+code.
type MockExpenseRepository struct {
	mu     sync.Mutex
	Counts map[string]int64
	Err    error
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{Counts: make(map[string]int64)}
}

func (m *MockExpenseRepository) CountByCategoryCode(ctx context.Context, tenantID, code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Counts[tenantID+"/"+code], nil
}

// MockUserRepository is an in-memory implementation of domain.UserRepository.
type MockUserRepository struct {
	mu    sync.Mutex
	Users map[uuid.UUID]domain.User

	FindErr   error
	StoreErr  error
	UpdateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uuid.UUID]domain.User)}
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, u := range m.Users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepository) Store(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return m.StoreErr
	}
	m.Users[u.ID] = *u
	return nil
}

func (m *MockUserRepository) UpdateLoginState(ctx context.Context, id uuid.UUID, failedLogins int, lockedUntil *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	u, ok := m.Users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.FailedLogins = failedLogins
	u.LockedUntil = lockedUntil
	m.Users[id] = u
	return nil
}
