package auth

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-accounts-api/internal/account"
)

// TokenService defines the interface for session token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(accountID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// AccountStore is the credential store the service reads and writes
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	FindByVerifyToken(ctx context.Context, token string) (*account.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, params account.CreateParams) (*account.Account, error)
	SetSessionToken(ctx context.Context, id uuid.UUID, token *string) error
	SetSubscription(ctx context.Context, id uuid.UUID, sub account.Subscription) (*account.Account, error)
	SetAvatar(ctx context.Context, id uuid.UUID, url string) error
	SetVerified(ctx context.Context, id uuid.UUID, verified bool, token *string) error
}

// PasswordHasher produces and checks one-way password digests
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
}

// TokenGenerator produces opaque, unguessable verification tokens
type TokenGenerator interface {
	Generate() (string, error)
}

// Notifier delivers verification emails
type Notifier interface {
	SendVerificationEmail(ctx context.Context, token, toEmail, name string) error
}

// AvatarStorage persists an uploaded image and returns a stable URL for it.
// Delete takes a URL previously returned by Save.
type AvatarStorage interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
