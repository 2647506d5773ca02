package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/user/erp-api/internal/domain"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-index violation. The
// index is the only uniqueness guard; the violation is the conflict signal.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// likeEscaper neutralizes LIKE metacharacters so the search term matches
// literally. Backslash is the default escape character in Postgres.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterClause appends the shared search/type predicates. Search is an ILIKE
// substring match on code and nom.
func filterClause(f domain.CategoryFilter, args []interface{}) (string, []interface{}) {
	var sb strings.Builder
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		fmt.Fprintf(&sb, " AND (code ILIKE $%d OR nom ILIKE $%d)", len(args), len(args))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		fmt.Fprintf(&sb, " AND type_global = $%d", len(args))
	}
	return sb.String(), args
}

// TenantCategoryRepository implements domain.TenantCategoryRepository for
// PostgreSQL. Uniqueness of (tenant_id, code) among active rows is enforced
// by a partial unique index.
type TenantCategoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTenantCategoryRepository(db *sql.DB, logger *slog.Logger) *TenantCategoryRepository {
	return &TenantCategoryRepository{db: db, logger: logger}
}

const tenantCategoryColumns = "id, tenant_id, code, nom, description, icone, type_global, is_active, created_at, updated_at"

func scanTenantCategory(row interface{ Scan(...interface{}) error }) (*domain.TenantCategory, error) {
	var c domain.TenantCategory
	var description, icone sql.NullString
	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.Code,
		&c.Nom,
		&description,
		&icone,
		&c.TypeGlobal,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Icone = icone.String
	return &c, nil
}

func (r *TenantCategoryRepository) FindActive(ctx context.Context, tenantID string, f domain.CategoryFilter) ([]domain.TenantCategory, error) {
	args := []interface{}{tenantID}
	clause, args := filterClause(f, args)
	query := `
        SELECT ` + tenantCategoryColumns + `
        FROM tenant_categories
        WHERE tenant_id = $1 AND is_active = true` + clause

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find active tenant categories: %w", err)
	}
	defer rows.Close()

	var out []domain.TenantCategory
	for rows.Next() {
		c, err := scanTenantCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *TenantCategoryRepository) FindByID(ctx context.Context, id uuid.UUID, tenantID string) (*domain.TenantCategory, error) {
	query := `
        SELECT ` + tenantCategoryColumns + `
        FROM tenant_categories
        WHERE id = $1 AND tenant_id = $2 AND is_active = true
    `
	c, err := scanTenantCategory(r.db.QueryRowContext(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant category by id: %w", err)
	}
	return c, nil
}

func (r *TenantCategoryRepository) FindActiveByCode(ctx context.Context, tenantID, code string) (*domain.TenantCategory, error) {
	query := `
        SELECT ` + tenantCategoryColumns + `
        FROM tenant_categories
        WHERE tenant_id = $1 AND code = $2 AND is_active = true
    `
	c, err := scanTenantCategory(r.db.QueryRowContext(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant category by code: %w", err)
	}
	return c, nil
}

func (r *TenantCategoryRepository) Insert(ctx context.Context, c *domain.TenantCategory) error {
	query := `
        INSERT INTO tenant_categories (id, tenant_id, code, nom, description, icone, type_global, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10)
    `
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.TenantID,
		c.Code,
		c.Nom,
		c.Description,
		c.Icone,
		c.TypeGlobal,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert tenant category: %w", err)
	}
	return nil
}

func (r *TenantCategoryRepository) Update(ctx context.Context, c *domain.TenantCategory) error {
	// Code and tenant_id are immutable; only the mutable fields are written.
	query := `
        UPDATE tenant_categories
        SET nom = $1, description = NULLIF($2, ''), icone = NULLIF($3, ''), type_global = $4, updated_at = $5
        WHERE id = $6 AND tenant_id = $7 AND is_active = true
    `
	res, err := r.db.ExecContext(ctx, query,
		c.Nom,
		c.Description,
		c.Icone,
		c.TypeGlobal,
		c.UpdatedAt,
		c.ID,
		c.TenantID,
	)
	if err != nil {
		return fmt.Errorf("update tenant category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant category rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TenantCategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID, tenantID string) error {
	query := `
        UPDATE tenant_categories
        SET is_active = false, updated_at = NOW()
        WHERE id = $1 AND tenant_id = $2 AND is_active = true
    `
	res, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("soft delete tenant category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GlobalCategoryRepository implements domain.GlobalCategoryRepository for
// PostgreSQL.
type GlobalCategoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewGlobalCategoryRepository(db *sql.DB, logger *slog.Logger) *GlobalCategoryRepository {
	return &GlobalCategoryRepository{db: db, logger: logger}
}

const globalCategoryColumns = "id, code, nom, description, icone, type_global, is_active, created_at, updated_at"

func scanGlobalCategory(row interface{ Scan(...interface{}) error }) (*domain.GlobalCategory, error) {
	var c domain.GlobalCategory
	var description, icone sql.NullString
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Nom,
		&description,
		&icone,
		&c.TypeGlobal,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Icone = icone.String
	return &c, nil
}

func (r *GlobalCategoryRepository) FindActive(ctx context.Context, f domain.CategoryFilter) ([]domain.GlobalCategory, error) {
	var args []interface{}
	clause, args := filterClause(f, args)
	query := `
        SELECT ` + globalCategoryColumns + `
        FROM global_categories
        WHERE is_active = true` + clause

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find active global categories: %w", err)
	}
	defer rows.Close()

	var out []domain.GlobalCategory
	for rows.Next() {
		c, err := scanGlobalCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan global category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *GlobalCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.GlobalCategory, error) {
	query := `
        SELECT ` + globalCategoryColumns + `
        FROM global_categories
        WHERE id = $1 AND is_active = true
    `
	c, err := scanGlobalCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find global category by id: %w", err)
	}
	return c, nil
}

// Upsert inserts the code on first sight and overwrites the mutable fields
// otherwise, in a single atomic statement. id and created_at keep their
// first-insert values.
func (r *GlobalCategoryRepository) Upsert(ctx context.Context, c *domain.GlobalCategory) (*domain.GlobalCategory, error) {
	query := `
        INSERT INTO global_categories (id, code, nom, description, icone, type_global, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, true, $7, $7)
        ON CONFLICT (code) WHERE is_active DO UPDATE SET
            nom = EXCLUDED.nom,
            description = EXCLUDED.description,
            icone = EXCLUDED.icone,
            type_global = EXCLUDED.type_global,
            updated_at = EXCLUDED.updated_at
        RETURNING ` + globalCategoryColumns + `
    `
	row, err := scanGlobalCategory(r.db.QueryRowContext(ctx, query,
		c.ID,
		c.Code,
		c.Nom,
		c.Description,
		c.Icone,
		c.TypeGlobal,
		c.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert global category: %w", err)
	}
	return row, nil
}

func (r *GlobalCategoryRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM global_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("hard delete global category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("hard delete rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
