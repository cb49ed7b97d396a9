package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// Identity is the caller an operation acts for. The zero value is anonymous.
type Identity struct {
	UserID string
}

// Anonymous is the identity of a caller with no credentials
var Anonymous = Identity{}

// User returns an authenticated identity for userID
func User(userID string) Identity {
	return Identity{UserID: userID}
}

func (i Identity) Authenticated() bool {
	return strings.TrimSpace(i.UserID) != ""
}

var (
	ErrMissingSecret = errors.New("token signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims carried in a bearer token. The user id is the registered subject.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for userID that expires after ttl
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id cannot be empty")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    constants.AppName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies tokenString and returns the identity it names
func ParseToken(secret []byte, tokenString string) (Identity, error) {
	if len(secret) == 0 {
		return Anonymous, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AppName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Anonymous, ErrInvalidToken
	}
	return User(claims.Subject), nil
}

// A private key for context that only this package can access
var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// ForContext finds the caller from the context. Returns Anonymous when
// Middleware has not run or the request carried no token.
func ForContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityCtxKey).(Identity)
	return id
}

// Middleware verifies an optional bearer token and packs the caller identity
// into the request context. Requests without an Authorization header continue
// as anonymous; a malformed or invalid token is rejected with 401.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Anonymous)))
				return
			}

			t := strings.SplitN(header, " ", 2)
			if len(t) != 2 || !strings.EqualFold(t[0], "Bearer") {
				logger.Debug("Invalid Authorization header format")
				unauthorized(w)
				return
			}

			id, err := ParseToken(secret, strings.TrimSpace(t[1]))
			if err != nil {
				logger.Debug("Rejected bearer token", "error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+constants.AppName+`"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid token"}`))
}
