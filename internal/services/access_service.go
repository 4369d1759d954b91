package services

import (
	"context"
	"time"

	"github.com/eidan66/wedding-album-sub000/internal/redis"
	album_errors "github.com/eidan66/wedding-album-sub000/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AccessService gates the album behind a shared access code. Attempts are
// rate limited per client IP; a successful check issues a short-lived signed
// session token.
type AccessService struct {
	codeHash      string
	sessionSecret []byte
	sessionExpiry time.Duration
	limiter       *redis.RateLimiter
}

func NewAccessService(codeHash, sessionSecret string, sessionExpiry time.Duration, limiter *redis.RateLimiter) *AccessService {
	return &AccessService{
		codeHash:      codeHash,
		sessionSecret: []byte(sessionSecret),
		sessionExpiry: sessionExpiry,
		limiter:       limiter,
	}
}

// VerifyCode checks the shared access code and returns a session token.
func (s *AccessService) VerifyCode(ctx context.Context, code, clientIP string) (string, error) {
	if s.limiter != nil {
		result, err := s.limiter.AllowAccess(ctx, clientIP)
		if err != nil {
			return "", err
		}
		if !result.Allowed {
			return "", album_errors.ErrRateLimited
		}
	}

	if s.codeHash == "" || code == "" {
		return "", album_errors.ErrAccessDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.codeHash), []byte(code)); err != nil {
		return "", album_errors.ErrAccessDenied
	}

	claims := jwt.MapClaims{
		"sub": "album-guest",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.sessionExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.sessionSecret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *AccessService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, album_errors.ErrAccessDenied
		}
		return s.sessionSecret, nil
	})
	if err != nil || !token.Valid {
		return album_errors.ErrAccessDenied
	}
	return nil
}
