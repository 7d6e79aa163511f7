package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-accounts-api/internal/httputil"
)

func protectedHandler(t *testing.T, env *testEnv) http.Handler {
	t.Helper()
	m := NewMiddleware(env.issuer, env.accounts)
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := AccountFromContext(r.Context())
		require.True(t, ok)
		httputil.RespondData(w, map[string]string{"email": acc.Email}, http.StatusOK)
	}))
}

func callProtected(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertNotAuthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httputil.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httputil.StatusUnauthorized, body.Status)
	assert.Equal(t, http.StatusUnauthorized, body.Code)
	assert.Equal(t, "Not authorized", body.Message)
}

func TestRequireAuth_AcceptsCurrentSession(t *testing.T) {
	env := newTestEnv(t)
	h := protectedHandler(t, env)

	session := env.verifiedSession(t, "ruth@example.com", "password")

	rec := callProtected(h, "Bearer "+session.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ruth@example.com")
}

func TestRequireAuth_RejectsBadHeaders(t *testing.T) {
	env := newTestEnv(t)
	h := protectedHandler(t, env)
	session := env.verifiedSession(t, "sam@example.com", "password")

	for _, header := range []string{
		"",
		session.Token,
		"Basic " + session.Token,
		"Bearer",
		"Bearer ",
		"Bearer garbage",
		"Bearer " + session.Token + " extra",
	} {
		assertNotAuthorized(t, callProtected(h, header))
	}
}

func TestRequireAuth_RejectsReplacedAndClearedSessions(t *testing.T) {
	env := newTestEnv(t)
	h := protectedHandler(t, env)
	ctx := context.Background()

	first := env.verifiedSession(t, "tom@example.com", "password")
	second, err := env.service.Login(ctx, "tom@example.com", "password")
	require.NoError(t, err)

	assertNotAuthorized(t, callProtected(h, "Bearer "+first.Token))
	assert.Equal(t, http.StatusOK, callProtected(h, "Bearer "+second.Token).Code)

	stored, err := env.accounts.FindByEmail(ctx, "tom@example.com")
	require.NoError(t, err)
	require.NoError(t, env.service.Logout(ctx, stored.ID))

	assertNotAuthorized(t, callProtected(h, "Bearer "+second.Token))
}

func TestRequireAuth_RejectsExpiredAndUnknownAccounts(t *testing.T) {
	env := newTestEnv(t)
	h := protectedHandler(t, env)

	env.verifiedSession(t, "uma@example.com", "password")
	stored, err := env.accounts.FindByEmail(context.Background(), "uma@example.com")
	require.NoError(t, err)

	// stored but expired
	expired, err := env.issuer.CreateToken(stored.ID, -time.Minute)
	require.NoError(t, err)
	require.NoError(t, env.accounts.SetSessionToken(context.Background(), stored.ID, &expired))
	assertNotAuthorized(t, callProtected(h, "Bearer "+expired))

	ghost, err := env.issuer.CreateToken(uuid.New(), time.Hour)
	require.NoError(t, err)
	assertNotAuthorized(t, callProtected(h, "Bearer "+ghost))
}

func TestAccountFromContext_Missing(t *testing.T) {
	_, ok := AccountFromContext(context.Background())
	assert.False(t, ok)
}
