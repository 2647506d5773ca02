package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CategoryType classifies an expense category on the accounting axis.
type CategoryType string

const (
	TypeExploitation   CategoryType = "exploitation"
	TypeConsommable    CategoryType = "consommable"
	TypeInvestissement CategoryType = "investissement"
	TypeFinancier      CategoryType = "financier"
	TypeExceptionnel   CategoryType = "exceptionnel"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case TypeExploitation, TypeConsommable, TypeInvestissement, TypeFinancier, TypeExceptionnel:
		return true
	}
	return false
}

// TenantCategory is an expense category private to a single tenant.
// The pair (TenantID, Code) is unique among active rows; rows are never
// physically removed, deletion flips IsActive.
type TenantCategory struct {
	ID          uuid.UUID    `json:"id"`
	TenantID    string       `json:"tenant_id"`
	Code        string       `json:"code"`
	Nom         string       `json:"nom"`
	Description string       `json:"description,omitempty"`
	Icone       string       `json:"icone,omitempty"`
	TypeGlobal  CategoryType `json:"typeGlobal"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// GlobalCategory is an expense category shared by every tenant. Code is
// unique among active rows across the whole store.
type GlobalCategory struct {
	ID          uuid.UUID    `json:"id"`
	Code        string       `json:"code"`
	Nom         string       `json:"nom"`
	Description string       `json:"description,omitempty"`
	Icone       string       `json:"icone,omitempty"`
	TypeGlobal  CategoryType `json:"typeGlobal"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CategorySource tags the provenance of an entry in the merged view.
type CategorySource string

const (
	SourceTenant CategorySource = "tenant"
	SourceGlobal CategorySource = "global"
)

// globalIDPrefix marks presentation identifiers of global-sourced entries so
// that API clients can hand them back unchanged. Internally the prefix is
// parsed once at the boundary into a CategoryRef; nothing downstream
// string-sniffs.
const globalIDPrefix = "global-"

// CategoryView is one entry of the merged tenant/global listing. ID is the
// presentation identifier: the raw row id for tenant-sourced entries,
// globalIDPrefix plus the row id for global-sourced ones.
type CategoryView struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Nom         string         `json:"nom"`
	Description string         `json:"description,omitempty"`
	Icone       string         `json:"icone,omitempty"`
	TypeGlobal  CategoryType   `json:"typeGlobal"`
	Source      CategorySource `json:"source"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ViewOfTenant builds the merged-list view of a tenant row.
func ViewOfTenant(c TenantCategory) CategoryView {
	return CategoryView{
		ID:          c.ID.String(),
		Code:        c.Code,
		Nom:         c.Nom,
		Description: c.Description,
		Icone:       c.Icone,
		TypeGlobal:  c.TypeGlobal,
		Source:      SourceTenant,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ViewOfGlobal builds the merged-list view of a global row.
func ViewOfGlobal(c GlobalCategory) CategoryView {
	return CategoryView{
		ID:          globalIDPrefix + c.ID.String(),
		Code:        c.Code,
		Nom:         c.Nom,
		Description: c.Description,
		Icone:       c.Icone,
		TypeGlobal:  c.TypeGlobal,
		Source:      SourceGlobal,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CategoryRef is a presentation identifier parsed into its typed form.
// Mutation entry points branch on Source instead of inspecting the raw
// string.
type CategoryRef struct {
	Source CategorySource
	ID     uuid.UUID
}

// ParseCategoryRef decodes a presentation identifier coming from the API.
func ParseCategoryRef(raw string) (CategoryRef, error) {
	source := SourceTenant
	if rest, ok := strings.CutPrefix(raw, globalIDPrefix); ok {
		source = SourceGlobal
		raw = rest
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return CategoryRef{}, fmt.Errorf("parse category id %q: %w", raw, ErrInvalidID)
	}
	return CategoryRef{Source: source, ID: id}, nil
}

// CategoryFilter restricts category listings. Search matches Code and Nom
// case-insensitively as a substring; an empty Type means all types.
type CategoryFilter struct {
	Search string
	Type   CategoryType
}

// TenantCategoryRepository defines persistence for tenant-private categories.
// Implementations must enforce (tenant_id, code) uniqueness among active rows
// and report a violation as ErrConflict.
type TenantCategoryRepository interface {
	FindActive(ctx context.Context, tenantID string, f CategoryFilter) ([]TenantCategory, error)
	FindByID(ctx context.Context, id uuid.UUID, tenantID string) (*TenantCategory, error)
	FindActiveByCode(ctx context.Context, tenantID, code string) (*TenantCategory, error)
	Insert(ctx context.Context, c *TenantCategory) error
	Update(ctx context.Context, c *TenantCategory) error
	SoftDelete(ctx context.Context, id uuid.UUID, tenantID string) error
}

// GlobalCategoryRepository defines persistence for shared categories.
// Upsert is keyed by code: insert on first sight, overwrite the mutable
// fields otherwise, atomically.
type GlobalCategoryRepository interface {
	FindActive(ctx context.Context, f CategoryFilter) ([]GlobalCategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*GlobalCategory, error)
	Upsert(ctx context.Context, c *GlobalCategory) (*GlobalCategory, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// ExpenseRepository exposes the one query the category engine needs from the
// expense ledger: how many expense rows still reference a category code.
type ExpenseRepository interface {
	CountByCategoryCode(ctx context.Context, tenantID, code string) (int64, error)
}
