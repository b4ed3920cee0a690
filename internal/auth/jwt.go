package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type JWTConfig struct {
	Issuer   string
	Secret   string
	TTLHours int
}

type JWTManager struct {
	cfg JWTConfig
	now func() time.Time
}

type Claims struct {
	UserID int64     `json:"uid"`
	Email  string    `json:"email"`
	Role   user.Role `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTManager(cfg JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg, now: time.Now}
}

func (m *JWTManager) TTL() time.Duration {
	return time.Duration(m.cfg.TTLHours) * time.Hour
}

// Sign issues a token for u. Each token carries a random jti so two logins
// within the same second still get distinct session rows.
func (m *JWTManager) Sign(u user.User) (string, time.Time, error) {
	jti, err := util.RandomToken(16)
	if err != nil {
		return "", time.Time{}, err
	}
	now := m.now()
	exp := now.Add(m.TTL())
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString([]byte(m.cfg.Secret))
	return s, exp, err
}

func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithIssuer(m.cfg.Issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
