package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	CompanyGroupID string `json:"company_group_id"`
	jwt.RegisteredClaims
}

// Identity is what the rest of the service knows about the caller.
type Identity struct {
	UserID         uuid.UUID
	Role           Role
	CompanyGroupID uuid.UUID
}

type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// GenerateToken signs an access token for the given identity.
func (m *JWTManager) GenerateToken(identity Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:         identity.UserID.String(),
		Role:           string(identity.Role),
		CompanyGroupID: identity.CompanyGroupID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Resolve validates the token and turns its claims into an Identity. Tokens
// without a user or tenant are rejected.
func (m *JWTManager) Resolve(tokenString string) (Identity, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return Identity{}, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad user_id", ErrInvalidToken)
	}
	tenantID, err := uuid.Parse(claims.CompanyGroupID)
	if err != nil || tenantID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: bad company_group_id", ErrInvalidToken)
	}

	return Identity{
		UserID:         userID,
		Role:           ParseRole(claims.Role),
		CompanyGroupID: tenantID,
	}, nil
}
