package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates a malformed or badly signed JWT.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the token's exp claim has passed.
	ErrTokenExpired = errors.New("token has expired")
)

// TokenService mints and validates the JWTs used by the API.
type TokenService interface {
	GenerateAccessToken(userID int64) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ParseUserID(token string) (int64, error)
}

type tokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &tokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *tokenService) GenerateAccessToken(userID int64) (string, error) {
	return s.generate(userID, s.accessTTL)
}

func (s *tokenService) GenerateRefreshToken(userID int64) (string, error) {
	return s.generate(userID, s.refreshTTL)
}

func (s *tokenService) generate(userID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"subject": map[string]any{
			"id":    userID,
			"roles": []string{"user"},
		},
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) ParseUserID(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	subject, ok := claims["subject"].(map[string]any)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, ok := subject["id"].(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidToken
	}
	return int64(id), nil
}
