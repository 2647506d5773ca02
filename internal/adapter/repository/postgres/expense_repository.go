package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpenseRepository implements domain.ExpenseRepository for PostgreSQL. The
// category engine only needs the reference count guarding removals.
type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) CountByCategoryCode(ctx context.Context, tenantID, code string) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM expenses WHERE tenant_id = $1 AND category_code = $2`
	if err := r.db.QueryRowContext(ctx, query, tenantID, code).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses by category code: %w", err)
	}
	return n, nil
}
