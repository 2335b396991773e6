// Package auth implements the shared access-code gate. One static code,
// checked against a bcrypt hash, buys a signed session token. This is a
// soft gate for a shared study tool, not an authentication system.
package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Gate struct {
	hmac     []byte
	codeHash []byte
}

func NewGate(hmacSecret, accessCodeHash string) *Gate {
	return &Gate{hmac: []byte(hmacSecret), codeHash: []byte(accessCodeHash)}
}

type claims struct {
	jwt.RegisteredClaims
}

func (g *Gate) issueToken() (string, error) {
	now := time.Now()
	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "member",
			Issuer:    "quizbank",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(g.hmac)
}

func (g *Gate) parse(tokenStr string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return g.hmac, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

// AccessHandler checks the shared code and answers with a bearer token.
// POST /access {"code": "..."}
func (g *Gate) AccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if bcrypt.CompareHashAndPassword(g.codeHash, []byte(req.Code)) != nil {
			http.Error(w, "incorrect code", http.StatusUnauthorized)
			return
		}
		tok, err := g.issueToken()
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}

// Middleware requires a valid bearer token on every request.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			if err := g.parse(strings.TrimPrefix(h, "Bearer ")); err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
