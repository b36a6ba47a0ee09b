package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// jwtSkew is the maximum allowed clock drift between the claimed "iat" and
// the server's own clock, per the Engine API authentication convention.
const jwtSkew = 60 * time.Second

// loadOrCreateJWTSecret reads a 32-byte hex-encoded secret from path,
// generating and persisting a fresh one if the file does not exist.
func loadOrCreateJWTSecret(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		secret, decErr := hex.DecodeString(strings.TrimSpace(string(raw)))
		if decErr != nil {
			return nil, fmt.Errorf("decode jwt secret at %s: %w", path, decErr)
		}
		if len(secret) != 32 {
			return nil, fmt.Errorf("jwt secret at %s must be 32 bytes, got %d", path, len(secret))
		}
		return secret, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read jwt secret at %s: %w", path, err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	encoded := hex.EncodeToString(secret)
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("persist jwt secret at %s: %w", path, err)
	}
	return secret, nil
}

// jwtAuth wraps next with HS256 bearer-token authentication, requiring an
// "iat" claim within jwtSkew of the server's clock. This matches the
// authenticated Engine API endpoint's usual auth scheme, not a general
// purpose identity layer.
func jwtAuth(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(header, prefix)

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		iat, ok := claims["iat"].(float64)
		if !ok {
			http.Error(w, "token missing iat claim", http.StatusUnauthorized)
			return
		}
		issuedAt := time.Unix(int64(math.Trunc(iat)), 0)
		if drift := time.Since(issuedAt); drift > jwtSkew || drift < -jwtSkew {
			http.Error(w, "iat outside allowed clock skew", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
