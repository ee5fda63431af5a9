package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// accountIDKey is the request-context key the authenticated account ID
// is stored under.
const accountIDKey contextKey = "account_id"

// Authenticator resolves a bearer token to an account ID. Identity
// management lives elsewhere; this is the seam it plugs into.
type Authenticator interface {
	// Authenticate returns the account ID the token belongs to, or an
	// error for an unknown or expired token.
	Authenticate(ctx context.Context, token string) (string, error)
}

// StaticTokenAuthenticator is a fixed token-to-account table. Suitable
// for local development and tests.
type StaticTokenAuthenticator struct {
	Tokens map[string]string
}

// Authenticate looks the token up in the static table.
func (a *StaticTokenAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	accountID, ok := a.Tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return accountID, nil
}

// ErrUnknownToken is returned for a token no account owns.
var ErrUnknownToken = &authError{"unknown token"}

type authError struct{ message string }

func (e *authError) Error() string { return e.message }

// RequireAccount is a middleware that authenticates the request's bearer
// token and stores the resolved account ID in the request context.
func RequireAccount(auth Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			accountID, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "Invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// AccountID returns the authenticated account ID stored by
// RequireAccount, or an empty string if the request was not
// authenticated.
func AccountID(ctx context.Context) string {
	accountID, _ := ctx.Value(accountIDKey).(string)
	return accountID
}
