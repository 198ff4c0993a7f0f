package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vibelab/vibe/config"
)

// ErrInvalidToken covers every token rejection: bad signature, expiry,
// malformed payload or missing subject. Callers answer 401 either way.
var ErrInvalidToken = errors.New("invalid token")

// GenerateToken issues a signed HS256 JWT whose subject identifies the
// authenticated user. The expiry is absolute (seconds since epoch).
func GenerateToken(subject string, ttl time.Duration) (string, error) {
	cfg := config.Get()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its subject. Validation is a pure
// function of the signing secret and the token string.
func ParseToken(tokenStr string) (string, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
