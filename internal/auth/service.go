package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidKey = errors.New("invalid api key")

// Service exchanges the deployment's API key for short-lived JWTs and
// validates them on protected routes. The key is configured as a bcrypt
// hash; when no hash is configured the service is disabled and protected
// routes admit every request.
type Service struct {
	apiKeyHash []byte
	jwtSecret  []byte
}

func NewService(apiKeyHash, jwtSecret string) *Service {
	return &Service{
		apiKeyHash: []byte(apiKeyHash),
		jwtSecret:  []byte(jwtSecret),
	}
}

// Enabled reports whether an API key hash is configured.
func (s *Service) Enabled() bool {
	return len(s.apiKeyHash) > 0
}

type TokenResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Exchange validates the presented API key against the configured hash and
// issues a token good for 24 hours.
func (s *Service) Exchange(apiKey string) (*TokenResult, error) {
	if !s.Enabled() {
		return nil, ErrInvalidKey
	}

	if err := bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(apiKey)); err != nil {
		return nil, ErrInvalidKey
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": "api",
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResult{Token: signed, ExpiresAt: expiresAt.Unix()}, nil
}

// ValidateToken checks signature and expiry and returns the token subject.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token subject")
	}

	return subject, nil
}
