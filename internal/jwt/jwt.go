package jwt

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stackover-dev/stackover/internal/domain"
	internal_errors "github.com/stackover-dev/stackover/internal/errors"
	"github.com/stackover-dev/stackover/internal/logger"
)

// Claims is what gets signed into an access token: subject (user id),
// a unique token id (jti) used by the revocation ledger, and the
// issued-at/expiry window.
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserId() (domain.UserId, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, internal_errors.Unauthorized("Invalid access token")
	}
	return id, nil
}

type JwtService interface {
	NewToken(user domain.User) (string, error)
	DecodeToken(jwtStr string) (*Claims, error)
}

type Jwt struct {
	secretKey []byte
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{[]byte(secretKey), ttl}
}

func (j *Jwt) NewToken(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.Id, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		logger.Log.Error("failed to sign token", "error", err)
		return "", err
	}

	return tokenString, nil
}

// DecodeToken verifies the signature and validity window. Malformed,
// tampered and expired tokens all come back as the same 401 so callers
// can't probe which check failed.
func (j *Jwt) DecodeToken(jwtStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(jwtStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal_errors.Unauthorized("Invalid access token")
		}
		return j.secretKey, nil
	})
	if err != nil {
		logger.Log.Debug("token decode failed", "error", err)
		return nil, internal_errors.Unauthorized("Invalid access token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal_errors.Unauthorized("Invalid access token")
	}

	return claims, nil
}
