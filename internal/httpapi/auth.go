package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sreeharimv/auction-platform/internal/clock"
	"github.com/sreeharimv/auction-platform/internal/config"
)

// Auth issues and verifies the admin session tokens. A single shared admin
// password gates the auctioneer console; successful login yields an HS256
// token good for the configured session TTL.
type Auth struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	clock    clock.Clock
}

func NewAuth(cfg config.AdminConfig, clk clock.Clock) *Auth {
	return &Auth{
		password: []byte(cfg.Password),
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.SessionTTL,
		clock:    clk,
	}
}

// Login checks the admin password and returns a signed session token.
func (a *Auth) Login(password string) (string, error) {
	if len(a.password) == 0 {
		return "", fmt.Errorf("admin login disabled: no password configured")
	}
	if subtle.ConstantTimeCompare([]byte(password), a.password) != 1 {
		return "", fmt.Errorf("invalid password")
	}

	now := a.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": now.Unix(),
		"exp": now.Add(a.ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

// Verify parses and validates a session token.
func (a *Auth) Verify(tokenString string) error {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock.Now))
	if err != nil {
		return fmt.Errorf("parsing token: %w", err)
	}
	if !t.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// RequireAdmin rejects requests without a valid bearer token.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := a.Verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next.ServeHTTP(w, r)
	})
}
