package postgres

import (
	"testing"

	"github.com/user/erp-api/internal/domain"
)

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name       string
		filter     domain.CategoryFilter
		baseArgs   []interface{}
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "Empty Filter",
			filter:     domain.CategoryFilter{},
			baseArgs:   []interface{}{"t1"},
			wantClause: "",
			wantArgs:   []interface{}{"t1"},
		},
		{
			name:       "Search Only",
			filter:     domain.CategoryFilter{Search: "transport"},
			baseArgs:   []interface{}{"t1"},
			wantClause: " AND (code ILIKE $2 OR nom ILIKE $2)",
			wantArgs:   []interface{}{"t1", "%transport%"},
		},
		{
			name:       "Search And Type",
			filter:     domain.CategoryFilter{Search: "loyer", Type: domain.TypeExploitation},
			baseArgs:   []interface{}{"t1"},
			wantClause: " AND (code ILIKE $2 OR nom ILIKE $2) AND type_global = $3",
			wantArgs:   []interface{}{"t1", "%loyer%", "exploitation"},
		},
		{
			name:       "Wildcards Match Literally",
			filter:     domain.CategoryFilter{Search: `100%_\`},
			baseArgs:   nil,
			wantClause: " AND (code ILIKE $1 OR nom ILIKE $1)",
			wantArgs:   []interface{}{`%100\%\_\\%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := filterClause(tt.filter, tt.baseArgs)
			if clause != tt.wantClause {
				t.Errorf("clause: got %q want %q", clause, tt.wantClause)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args: got %v want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d: got %v want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}
