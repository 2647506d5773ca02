package token

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/user/erp-api/internal/domain"
)

const testSecret = "test-secret"

func TestGenerateAndValidate(t *testing.T) {
	user := &domain.User{
		ID:       uuid.New(),
		TenantID: "t1",
		Role:     domain.RoleManager,
	}

	tok, err := Generate(user, nil, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := Validate(tok, testSecret)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if claims.TenantID != "t1" {
		t.Errorf("expected tenant t1, got %q", claims.TenantID)
	}
	if claims.Role != domain.RoleManager {
		t.Errorf("expected role %q, got %q", domain.RoleManager, claims.Role)
	}
	if claims.ImpersonatorID != nil || claims.Grant != "" {
		t.Errorf("expected plain session claims, got %+v", claims)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	user := &domain.User{ID: uuid.New(), TenantID: "t1", Role: domain.RoleMember}
	tok, err := Generate(user, nil, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := Validate(tok, "another-secret"); err == nil {
		t.Error("expected validation to fail with the wrong secret")
	}
}

func TestValidate_Expired(t *testing.T) {
	user := &domain.User{ID: uuid.New(), TenantID: "t1", Role: domain.RoleMember}
	tok, err := Generate(user, nil, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := Validate(tok, testSecret); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}

func TestGenerateImpersonationGrant(t *testing.T) {
	target := uuid.New()
	admin := uuid.New()

	tok, err := GenerateImpersonationGrant(target, admin, testSecret, 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateImpersonationGrant failed: %v", err)
	}

	claims, err := Validate(tok, testSecret)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Grant != GrantImpersonation {
		t.Errorf("expected grant %q, got %q", GrantImpersonation, claims.Grant)
	}
	if claims.UserID != target {
		t.Errorf("expected target %s, got %s", target, claims.UserID)
	}
	if claims.ImpersonatorID == nil || *claims.ImpersonatorID != admin {
		t.Errorf("expected impersonator %s, got %v", admin, claims.ImpersonatorID)
	}
}
