package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-accounts-api/internal/database/databasetest"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(databasetest.NewSQLite(t))
}

func createAccount(t *testing.T, repo *Repository, email, token string) *Account {
	t.Helper()
	acc, err := repo.Create(context.Background(), CreateParams{
		Email:        email,
		Name:         "Ann",
		PasswordHash: "hash",
		VerifyToken:  token,
	})
	require.NoError(t, err)
	return acc
}

func TestRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created := createAccount(t, repo, "  Ann@Example.COM ", "tok-1")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "ann@example.com", created.Email)
	assert.Equal(t, DefaultSubscription, created.Subscription)
	assert.False(t, created.Verified)
	require.NotNil(t, created.VerifyToken)
	assert.Equal(t, "tok-1", *created.VerifyToken)
	assert.Nil(t, created.SessionToken)

	byEmail, err := repo.FindByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byToken, err := repo.FindByVerifyToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byToken.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)
	assert.Equal(t, "hash", byID.PasswordHash)
}

func TestRepository_FindMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByVerifyToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByVerifyToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CreateDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	createAccount(t, repo, "a@x.com", "tok-1")

	_, err := repo.Create(context.Background(), CreateParams{Email: "A@X.com", PasswordHash: "h", VerifyToken: "tok-2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := newTestRepository(t)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(context.Background(), CreateParams{
				Email:        "race@x.com",
				PasswordHash: "h",
				VerifyToken:  fmt.Sprintf("tok-%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrDuplicateEmail):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestRepository_SessionToken(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	acc := createAccount(t, repo, "a@x.com", "tok")

	first, second := "session-1", "session-2"
	require.NoError(t, repo.SetSessionToken(ctx, acc.ID, &first))
	require.NoError(t, repo.SetSessionToken(ctx, acc.ID, &second))

	got, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SessionToken)
	assert.Equal(t, second, *got.SessionToken)

	require.NoError(t, repo.SetSessionToken(ctx, acc.ID, nil))
	require.NoError(t, repo.SetSessionToken(ctx, acc.ID, nil))

	got, err = repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SessionToken)

	assert.ErrorIs(t, repo.SetSessionToken(ctx, uuid.New(), nil), ErrNotFound)
}

func TestRepository_SetVerified(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	acc := createAccount(t, repo, "a@x.com", "tok")

	tok := "tok"
	assert.ErrorIs(t, repo.SetVerified(ctx, acc.ID, true, &tok), ErrVerifiedToken)

	require.NoError(t, repo.SetVerified(ctx, acc.ID, true, nil))

	got, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Nil(t, got.VerifyToken)

	_, err = repo.FindByVerifyToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_SetSubscriptionAndAvatar(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	acc := createAccount(t, repo, "a@x.com", "tok")

	updated, err := repo.SetSubscription(ctx, acc.ID, SubscriptionBusiness)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionBusiness, updated.Subscription)

	require.NoError(t, repo.SetAvatar(ctx, acc.ID, "/avatars/a.png"))
	got, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "/avatars/a.png", *got.AvatarURL)

	_, err = repo.SetSubscription(ctx, uuid.New(), SubscriptionPro)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.SetAvatar(ctx, uuid.New(), "x"), ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrap: %w", errors.New("UNIQUE constraint failed: accounts.email"))))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestParseSubscription(t *testing.T) {
	for _, s := range Subscriptions() {
		got, err := ParseSubscription(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseSubscription("enterprise")
	assert.ErrorIs(t, err, ErrInvalidSubscription)
	_, err = ParseSubscription("")
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}
