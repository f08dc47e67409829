package service

import (
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4" // Import JWT library
	"golang.org/x/crypto/bcrypt"   // Import bcrypt
)

// --- Error Definitions ---
var (
	ErrAuthDisabled         = errors.New("authentication is not configured")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// OwnerSubject is the subject of every token; the tracker has a single owner.
const OwnerSubject = "owner"

const tokenIssuer = "exercise-tracker"

// --- Service Interface ---
type AuthService interface {
	Enabled() bool
	Login(ctx context.Context, password string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the JWT payload issued on login.
type Claims struct {
	jwt.RegisteredClaims
}

// --- Service Implementation ---

type authService struct {
	jwtSecret     string
	passwordHash  string
	jwtExpiration time.Duration
	clock         repository.Clock
}

// NewAuthService creates a new instance of authService.
// An empty secret disables authentication entirely.
func NewAuthService(jwtSecret, passwordHash string, jwtExpiration time.Duration, clock repository.Clock) AuthService {
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		jwtSecret:     jwtSecret,
		passwordHash:  passwordHash,
		jwtExpiration: jwtExpiration,
		clock:         clock,
	}
}

// HashPassword returns the bcrypt hash to put in auth.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Enabled() bool {
	return s.jwtSecret != ""
}

// Login checks the owner password and issues a signed token.
func (s *authService) Login(_ context.Context, password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrAuthDisabled
	}
	if password == "" {
		return "", time.Time{}, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrAuthenticationFailed
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.jwtExpiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   OwnerSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, ErrTokenGeneration
	}
	return signed, expiresAt, nil
}

// ValidateToken parses tokenString and checks signature, expiry and subject.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != OwnerSubject {
		return nil, ErrInvalidToken
	}
	// jwt/v4 validates exp against the wall clock; check it against ours as well.
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(s.clock.Now()) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
