package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/campus-fixit/internal"
	coreuser "github.com/frahmantamala/campus-fixit/internal/core/user"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the session token payload. Tokens are never stored server side.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and verifies session tokens.
type TokenGenerator interface {
	Generate(userID string, role coreuser.Role) (string, error)
	Validate(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		now:    time.Now,
	}
}

func (j *JWTTokenGenerator) Generate(userID string, role coreuser.Role) (string, error) {
	now := j.now()
	claims := &Claims{
		ID:   userID,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate reports ErrTokenExpired for an expired but otherwise sound token
// and ErrInvalidToken for everything else.
func (j *JWTTokenGenerator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// UserSummary is the public view of an account returned with a token.
type UserSummary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  coreuser.Role `json:"role"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// Credentials is what the auth flow needs from a stored user.
type Credentials struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         coreuser.Role
	CreatedAt    time.Time
}

func (c *Credentials) Summary() UserSummary {
	return UserSummary{ID: c.ID, Name: c.Name, Email: c.Email, Role: c.Role}
}
