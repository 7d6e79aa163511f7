package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-accounts-api/internal/account"
	"github.com/redmonkez12/go-accounts-api/internal/httputil"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const AccountContextKey ContextKey = "account"

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	accounts     AccountStore
}

func NewMiddleware(tokenService TokenService, accounts AccountStore) *Middleware {
	return &Middleware{tokenService: tokenService, accounts: accounts}
}

// RequireAuth accepts a request only when its bearer token verifies and is
// still the session token stored on the account
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok := bearerToken(r)
		if !ok {
			notAuthorized(w)
			return
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			logger.Debug("session token rejected", "error", err)
			notAuthorized(w)
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			notAuthorized(w)
			return
		}

		acc, err := m.accounts.FindByID(r.Context(), accountID)
		if err != nil {
			logger.Debug("session account lookup failed", "error", err)
			notAuthorized(w)
			return
		}

		// logout or a newer login invalidates the token before it expires
		if acc.SessionToken == nil || subtle.ConstantTimeCompare([]byte(*acc.SessionToken), []byte(token)) != 1 {
			notAuthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, acc)
		ctx = logging.WithLogger(ctx, logger.WithFields(map[string]any{"account_id": acc.ID.String()}))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountFromContext returns the account attached by RequireAuth
func AccountFromContext(ctx context.Context) (*account.Account, bool) {
	acc, ok := ctx.Value(AccountContextKey).(*account.Account)
	return acc, ok
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func notAuthorized(w http.ResponseWriter) {
	httputil.RespondMessage(w, "Not authorized", http.StatusUnauthorized)
}
