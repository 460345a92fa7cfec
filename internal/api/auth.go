package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// ─── Identity ───────────────────────────────────────────────────────────────
// Sessions live upstream. A request names its user either with an HS256
// bearer token whose "sub" is the user id, or with X-User-ID when the server
// sits behind a proxy that already authenticated the caller.

type ctxKey struct{}

// UserHeader carries the caller's user id when header identity is enabled.
const UserHeader = "X-User-ID"

// UserID returns the authenticated user id stored on ctx.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithUserID returns ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.identify(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// requireMember lets only members of the {id} group through.
func (s *Server) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "id")
		if err := s.svc.Summaries.RequireMember(r.Context(), groupID, UserID(r.Context())); err != nil {
			writeDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) identify(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" && s.opts.JWTSecret != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return "", errors.New("authorization must be a bearer token")
		}
		return VerifyToken(s.opts.JWTSecret, token)
	}
	if s.opts.AllowUserHeader {
		if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
			return id, nil
		}
	}
	return "", errors.New("missing credentials")
}

// IssueToken signs an HS256 token for userID valid for ttl.
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "habitking",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken validates an HS256 token and returns its subject.
func VerifyToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
