// Package auth implements the portal session store: password-per-role login,
// bearer tokens carrying the role claim, and token revocation.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrRevokedToken       = errors.New("token revoked")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service issues, validates and revokes role-scoped session tokens. Role
// passwords are bcrypt-hashed at startup and compared on login; tokens are
// HS256 JWTs whose jti lands in an in-process revocation set on logout.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	passwords map[models.Role]string

	mu      sync.Mutex
	revoked map[string]struct{}
}

// NewService creates a session service from config.
func NewService(cfg *config.Config) (*Service, error) {
	passwords := make(map[models.Role]string, 3)
	for role, plain := range map[models.Role]string{
		models.RoleAdmin:      cfg.AdminPassword,
		models.RoleTechnician: cfg.TechnicianPassword,
		models.RoleCustomer:   cfg.CustomerPassword,
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash %s password: %w", role, err)
		}
		passwords[role] = string(hash)
	}

	return &Service{
		jwtSecret: []byte(cfg.JWTSecret),
		tokenExp:  cfg.TokenExpiry,
		passwords: passwords,
		revoked:   make(map[string]struct{}),
	}, nil
}

// Login checks the role password and issues a token for the role.
func (s *Service) Login(role models.Role, password string) (string, error) {
	hash, ok := s.passwords[role]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.Issue(role)
}

// Issue creates a signed session token carrying the role.
func (s *Service) Issue(role models.Role) (string, error) {
	if !models.IsValidRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":  uuid.NewString(),
		"role": string(role),
		"exp":  now.Add(s.tokenExp).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Validate parses a session token and returns the role it was issued for.
func (s *Service) Validate(tokenString string) (models.Role, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	role := models.Role(roleStr)
	if !models.IsValidRole(role) {
		return "", ErrInvalidToken
	}

	s.mu.Lock()
	_, isRevoked := s.revoked[jti]
	s.mu.Unlock()
	if isRevoked {
		return "", ErrRevokedToken
	}

	return role, nil
}

// Revoke invalidates a previously issued token. Unknown or malformed tokens
// are ignored, matching logout semantics.
func (s *Service) Revoke(tokenString string) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return
	}

	s.mu.Lock()
	s.revoked[jti] = struct{}{}
	s.mu.Unlock()
}
