package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/erp-api/internal/domain"
	"github.com/user/erp-api/internal/pkg/token"
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords, so callers cannot probe which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned while a lockout window is open,
	// regardless of password correctness.
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrInvalidGrant is returned when an impersonation token is missing,
	// expired or not an impersonation grant.
	ErrInvalidGrant = errors.New("invalid impersonation grant")
)

type authService struct {
	userRepo    domain.UserRepository
	jwtSecret   string
	jwtExpiry   time.Duration
	maxFailures int
	lockWindow  time.Duration
	logger      *slog.Logger
}

// NewAuthService creates the authentication service. maxFailures consecutive
// bad passwords lock the account for lockWindow.
func NewAuthService(userRepo domain.UserRepository, jwtSecret string, jwtExpiry time.Duration, maxFailures int, lockWindow time.Duration, logger *slog.Logger) AuthUseCase {
	return &authService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		jwtExpiry:   jwtExpiry,
		maxFailures: maxFailures,
		lockWindow:  lockWindow,
		logger:      logger,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return "", ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		failures := user.FailedLogins + 1
		var lockedUntil *time.Time
		if failures >= s.maxFailures {
			until := now.Add(s.lockWindow)
			lockedUntil = &until
			failures = 0
			s.logger.Warn("account locked after repeated failures", "user_id", user.ID, "until", until)
		}
		if uerr := s.userRepo.UpdateLoginState(ctx, user.ID, failures, lockedUntil); uerr != nil {
			s.logger.Error("failed to record login failure", "user_id", user.ID, "error", uerr)
		}
		return "", ErrInvalidCredentials
	}

	// Success clears any stale lockout bookkeeping.
	if user.FailedLogins > 0 || user.LockedUntil != nil {
		if uerr := s.userRepo.UpdateLoginState(ctx, user.ID, 0, nil); uerr != nil {
			s.logger.Error("failed to reset login state", "user_id", user.ID, "error", uerr)
		}
	}

	return token.Generate(user, nil, s.jwtSecret, s.jwtExpiry)
}

// Impersonate exchanges an admin-signed grant token for a session token as
// the target user. The issued claims carry the impersonator's id.
func (s *authService) Impersonate(ctx context.Context, grantToken string) (string, error) {
	claims, err := token.Validate(grantToken, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGrant, err)
	}
	if claims.Grant != token.GrantImpersonation || claims.ImpersonatorID == nil {
		return "", ErrInvalidGrant
	}

	target, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidGrant
		}
		return "", fmt.Errorf("find target user: %w", err)
	}

	impersonator, err := s.userRepo.FindByID(ctx, *claims.ImpersonatorID)
	if err != nil || impersonator.Role != domain.RoleAdmin {
		return "", ErrInvalidGrant
	}

	s.logger.Info("impersonation session issued", "impersonator_id", impersonator.ID, "target_id", target.ID)
	return token.Generate(target, &impersonator.ID, s.jwtSecret, s.jwtExpiry)
}
