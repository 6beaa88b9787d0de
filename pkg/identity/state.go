package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateSigner issues and verifies the OAuth state parameter as a short lived
// HS256 token bound to the provider name.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type stateClaims struct {
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if secret == "" {
		// Unset secret: fall back to a per-process random key. States
		// issued before a restart become invalid.
		secret = uuid.NewString() + uuid.NewString()
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *StateSigner) Issue(provider string) (string, error) {
	now := s.now()
	claims := stateClaims{
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *StateSigner) Verify(state, provider string) error {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidState
	}
	if claims.Provider != provider {
		return ErrInvalidState
	}
	return nil
}
