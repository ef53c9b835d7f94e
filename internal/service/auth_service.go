package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dom/cyprine-heroes/internal/config"
)

const (
	adminSubject = "admin"
	TokenType    = "bearer"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues access tokens for the single admin account.
type AuthService struct {
	passwordHash []byte
	cfg          *config.Config
}

func NewAuthService(cfg *config.Config) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{
		passwordHash: hash,
		cfg:          cfg,
	}, nil
}

type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

func (s *AuthService) Login(ctx context.Context, password string) (*TokenResult, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.JWTExpirationMinutes) * time.Minute)
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &TokenResult{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if sub, _ := claims.GetSubject(); sub != adminSubject {
		return nil, errors.New("invalid token subject")
	}

	return &claims, nil
}
