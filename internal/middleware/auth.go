package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"example.com/clyqfeed/internal/logger"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	AuthorCtxKey    = contextKey("author")
	RequestIDCtxKey = contextKey("request_id")
)

var logg = logger.New()

// Identity resolves the caller from an optional HS256 bearer token carrying a
// "username" claim. Requests are never rejected: without a usable token the
// context simply carries no author. An empty secret disables token parsing.
func Identity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			author, err := authorFromHeader(authHeader, secret)
			if err != nil {
				logg.Info("http/identity", "Ignoring Authorization header: "+err.Error())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), AuthorCtxKey, author)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authorFromHeader(authHeader string, secret []byte) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	username, ok := claims["username"].(string)
	if !ok || strings.TrimSpace(username) == "" {
		return "", errors.New("invalid username in token")
	}
	return username, nil
}

// AuthorFromContext returns the author resolved by Identity, if any.
func AuthorFromContext(ctx context.Context) (string, bool) {
	author, ok := ctx.Value(AuthorCtxKey).(string)
	return author, ok
}
