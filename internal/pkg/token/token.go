package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/user/erp-api/internal/domain"
)

// GrantImpersonation is the grant claim value of an admin-issued
// impersonation token.
const GrantImpersonation = "impersonation"

// Claims defines the custom claims for the JWT.
type Claims struct {
	UserID         uuid.UUID   `json:"user_id"`
	TenantID       string      `json:"tenant_id"`
	Role           domain.Role `json:"role"`
	ImpersonatorID *uuid.UUID  `json:"impersonator_id,omitempty"`
	Grant          string      `json:"grant,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates a signed session token for a user.
func Generate(user *domain.User, impersonatorID *uuid.UUID, secretKey string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:         user.ID,
		TenantID:       user.TenantID,
		Role:           user.Role,
		ImpersonatorID: impersonatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// GenerateImpersonationGrant creates the admin-signed token that can later be
// exchanged for a session as the target user.
func GenerateImpersonationGrant(targetUserID, impersonatorID uuid.UUID, secretKey string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:         targetUserID,
		ImpersonatorID: &impersonatorID,
		Grant:          GrantImpersonation,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// Validate parses and validates a JWT string.
func Validate(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
