package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParseCategoryRef(t *testing.T) {
	tenantID := uuid.New()
	globalID := uuid.New()

	tests := []struct {
		name       string
		raw        string
		wantSource CategorySource
		wantID     uuid.UUID
		wantErr    error
	}{
		{
			name:       "Tenant ID",
			raw:        tenantID.String(),
			wantSource: SourceTenant,
			wantID:     tenantID,
		},
		{
			name:       "Global Prefixed ID",
			raw:        "global-" + globalID.String(),
			wantSource: SourceGlobal,
			wantID:     globalID,
		},
		{
			name:    "Garbage",
			raw:     "not-an-id",
			wantErr: ErrInvalidID,
		},
		{
			name:    "Global Prefix With Garbage",
			raw:     "global-not-an-id",
			wantErr: ErrInvalidID,
		},
		{
			name:    "Empty",
			raw:     "",
			wantErr: ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseCategoryRef(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ref.Source != tt.wantSource {
				t.Errorf("source: got %q want %q", ref.Source, tt.wantSource)
			}
			if ref.ID != tt.wantID {
				t.Errorf("id: got %v want %v", ref.ID, tt.wantID)
			}
		})
	}
}

func TestViewPresentationIDs(t *testing.T) {
	tc := TenantCategory{ID: uuid.New(), Code: "DEP_TRANSPORT"}
	gv := GlobalCategory{ID: uuid.New(), Code: "DEP_TRANSPORT"}

	tenantView := ViewOfTenant(tc)
	if tenantView.ID != tc.ID.String() {
		t.Errorf("tenant view id: got %q want %q", tenantView.ID, tc.ID.String())
	}
	if tenantView.Source != SourceTenant {
		t.Errorf("tenant view source: got %q", tenantView.Source)
	}

	globalView := ViewOfGlobal(gv)
	if globalView.ID != "global-"+gv.ID.String() {
		t.Errorf("global view id: got %q", globalView.ID)
	}
	if globalView.Source != SourceGlobal {
		t.Errorf("global view source: got %q", globalView.Source)
	}

	// A presentation id must round-trip through ParseCategoryRef.
	ref, err := ParseCategoryRef(globalView.ID)
	if err != nil {
		t.Fatalf("round-trip parse failed: %v", err)
	}
	if ref.Source != SourceGlobal || ref.ID != gv.ID {
		t.Errorf("round-trip mismatch: %+v", ref)
	}
}
