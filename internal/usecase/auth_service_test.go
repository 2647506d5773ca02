package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/erp-api/internal/domain"
	"github.com/user/erp-api/internal/domain/mocks"
	"github.com/user/erp-api/internal/pkg/token"
)

const testSecret = "test-secret"

func newAuthFixture(t *testing.T, maxFailures int) (AuthUseCase, *mocks.MockUserRepository, *domain.User) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userRepo := mocks.NewMockUserRepository()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     "t1",
		Email:        "claire@exemple.fr",
		PasswordHash: string(hash),
		Role:         domain.RoleManager,
	}
	if err := userRepo.Store(context.Background(), user); err != nil {
		t.Fatalf("store user: %v", err)
	}

	svc := NewAuthService(userRepo, testSecret, time.Hour, maxFailures, 15*time.Minute, logger)
	return svc, userRepo, user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Enriches Claims", func(t *testing.T) {
		svc, _, user := newAuthFixture(t, 5)

		tok, err := svc.Login(ctx, "claire@exemple.fr", "correct-horse")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		claims, err := token.Validate(tok, testSecret)
		if err != nil {
			t.Fatalf("validate token: %v", err)
		}
		if claims.UserID != user.ID || claims.TenantID != "t1" || claims.Role != domain.RoleManager {
			t.Errorf("claims mismatch: %+v", claims)
		}
		if claims.ImpersonatorID != nil {
			t.Error("regular login must not carry an impersonator")
		}
	})

	t.Run("Unknown Email", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t, 5)
		if _, err := svc.Login(ctx, "inconnue@exemple.fr", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Wrong Password Increments Counter", func(t *testing.T) {
		svc, userRepo, user := newAuthFixture(t, 5)
		if _, err := svc.Login(ctx, "claire@exemple.fr", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		stored, _ := userRepo.FindByID(ctx, user.ID)
		if stored.FailedLogins != 1 {
			t.Errorf("failed logins: got %d want 1", stored.FailedLogins)
		}
	})

	t.Run("Lockout After Threshold", func(t *testing.T) {
		svc, userRepo, user := newAuthFixture(t, 3)
		for i := 0; i < 3; i++ {
			if _, err := svc.Login(ctx, "claire@exemple.fr", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
			}
		}
		stored, _ := userRepo.FindByID(ctx, user.ID)
		if stored.LockedUntil == nil || !stored.LockedUntil.After(time.Now()) {
			t.Fatal("account should be locked after the third failure")
		}
		// Even the correct password fails while the window is open.
		if _, err := svc.Login(ctx, "claire@exemple.fr", "correct-horse"); !errors.Is(err, ErrAccountLocked) {
			t.Errorf("expected ErrAccountLocked, got %v", err)
		}
	})

	t.Run("Expired Lock Allows Login And Resets State", func(t *testing.T) {
		svc, userRepo, user := newAuthFixture(t, 3)
		past := time.Now().Add(-time.Minute)
		if err := userRepo.UpdateLoginState(ctx, user.ID, 0, &past); err != nil {
			t.Fatalf("prime lock: %v", err)
		}
		if _, err := svc.Login(ctx, "claire@exemple.fr", "correct-horse"); err != nil {
			t.Fatalf("expected login after lock expiry, got %v", err)
		}
		stored, _ := userRepo.FindByID(ctx, user.ID)
		if stored.FailedLogins != 0 || stored.LockedUntil != nil {
			t.Errorf("login state not reset: %+v", stored)
		}
	})
}

func TestAuthService_Impersonate(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (AuthUseCase, *mocks.MockUserRepository, *domain.User, *domain.User) {
		svc, userRepo, target := newAuthFixture(t, 5)
		admin := &domain.User{
			ID:       uuid.New(),
			TenantID: "t1",
			Email:    "admin@exemple.fr",
			Role:     domain.RoleAdmin,
		}
		if err := userRepo.Store(ctx, admin); err != nil {
			t.Fatalf("store admin: %v", err)
		}
		return svc, userRepo, admin, target
	}

	t.Run("Valid Grant", func(t *testing.T) {
		svc, _, admin, target := setup(t)
		grant, err := token.GenerateImpersonationGrant(target.ID, admin.ID, testSecret, time.Minute)
		if err != nil {
			t.Fatalf("generate grant: %v", err)
		}

		session, err := svc.Impersonate(ctx, grant)
		if err != nil {
			t.Fatalf("impersonate: %v", err)
		}
		claims, err := token.Validate(session, testSecret)
		if err != nil {
			t.Fatalf("validate session: %v", err)
		}
		if claims.UserID != target.ID || claims.TenantID != target.TenantID {
			t.Errorf("session must be the target's: %+v", claims)
		}
		if claims.ImpersonatorID == nil || *claims.ImpersonatorID != admin.ID {
			t.Error("session must carry the impersonator id")
		}
	})

	t.Run("Session Token Is Not A Grant", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		session, err := svc.Login(ctx, "claire@exemple.fr", "correct-horse")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if _, err := svc.Impersonate(ctx, session); !errors.Is(err, ErrInvalidGrant) {
			t.Errorf("expected ErrInvalidGrant, got %v", err)
		}
	})

	t.Run("Non Admin Impersonator", func(t *testing.T) {
		svc, _, _, target := setup(t)
		grant, err := token.GenerateImpersonationGrant(target.ID, target.ID, testSecret, time.Minute)
		if err != nil {
			t.Fatalf("generate grant: %v", err)
		}
		if _, err := svc.Impersonate(ctx, grant); !errors.Is(err, ErrInvalidGrant) {
			t.Errorf("expected ErrInvalidGrant, got %v", err)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		svc, _, admin, target := setup(t)
		grant, err := token.GenerateImpersonationGrant(target.ID, admin.ID, "other-secret", time.Minute)
		if err != nil {
			t.Fatalf("generate grant: %v", err)
		}
		if _, err := svc.Impersonate(ctx, grant); !errors.Is(err, ErrInvalidGrant) {
			t.Errorf("expected ErrInvalidGrant, got %v", err)
		}
	})
}
