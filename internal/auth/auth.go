// Package auth authenticates API callers with Firebase ID tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

type contextKey string

const userKey contextKey = "auth.user"

// ErrInvalidToken is returned by verifiers for unknown or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// User is the authenticated caller.
type User struct {
	UID   string
	Email string
}

// TokenVerifier resolves a bearer token to a user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

// idTokenVerifier is the subset of *auth.Client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier builds a verifier from an initialized Firebase app.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (User, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return User{}, errors.Join(ErrInvalidToken, err)
	}
	u := User{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		u.Email = email
	}
	return u, nil
}

// StaticVerifier maps fixed tokens to user IDs for local development.
type StaticVerifier map[string]string

// ParseStatic reads "token:uid" pairs separated by commas.
func ParseStatic(raw string) StaticVerifier {
	out := StaticVerifier{}
	for _, pair := range strings.Split(raw, ",") {
		token, uid, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || uid == "" {
			continue
		}
		out[token] = uid
	}
	return out
}

func (v StaticVerifier) Verify(_ context.Context, token string) (User, error) {
	uid, ok := v[token]
	if !ok {
		return User{}, ErrInvalidToken
	}
	return User{UID: uid}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// user in the request context.
func Middleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				unauthorized(w, "invalid authorization header format")
				return
			}

			user, err := v.Verify(r.Context(), token)
			if err != nil {
				slog.WarnContext(r.Context(), "Token verification failed", "error", err)
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser attaches a user to a context.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// FromContext returns the authenticated user.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok && u.UID != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="finsight"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
