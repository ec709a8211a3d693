package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
)

var _ port.TokenIssuer = (*TokenManager)(nil)

// Claims is the verified identity carried by a session token.
type Claims struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
}

type tokenClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m TokenManager) Issue(u domain.User) (string, error) {
	const op = "TokenManager.Issue"

	now := time.Now()
	claims := tokenClaims{
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify parses and validates the token, returning the embedded claims.
func (m TokenManager) Verify(tokenS string) (Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenS, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf(
					"unexpected signing method: %v", t.Header["alg"],
				)
			}
			return m.secret, nil
		},
	)
	if err != nil {
		return Claims{}, domain.Unauthorized("token is invalid or expired")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Claims{}, domain.Unauthorized("token subject is not a user id")
	}

	return Claims{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
