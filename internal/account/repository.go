package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-accounts-api/internal/database"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrVerifiedToken  = errors.New("verified account cannot keep a verification token")
)

// uniqueViolation is the SQLSTATE Postgres reports for unique constraint failures
const uniqueViolation = "23505"

// Repository handles account persistence
type Repository struct {
	db  *bun.DB
	now func() time.Time
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create inserts a new unverified account. The email unique constraint is
// the authoritative guard against concurrent signups.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Account, error) {
	now := r.now().UTC()
	token := params.VerifyToken
	sub := params.Subscription
	if sub == "" {
		sub = DefaultSubscription
	}

	dbAccount := &database.Account{
		ID:           uuid.New(),
		Email:        NormalizeEmail(params.Email),
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Subscription: string(sub),
		Verified:     false,
		VerifyToken:  &token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.db.NewInsert().Model(dbAccount).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return mapDBAccountToModel(dbAccount), nil
}

// FindByEmail retrieves an account by its normalized email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findOne(ctx, "email = ?", NormalizeEmail(email))
}

// FindByVerifyToken retrieves the account holding the given verification token
func (r *Repository) FindByVerifyToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, "verify_token = ?", token)
}

// FindByID retrieves an account by ID
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *Repository) findOne(ctx context.Context, where string, arg any) (*Account, error) {
	dbAccount := new(database.Account)
	err := r.db.NewSelect().
		Model(dbAccount).
		Where(where, arg).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return mapDBAccountToModel(dbAccount), nil
}

// SetSessionToken stores token as the only live session, or clears it when nil
func (r *Repository) SetSessionToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.update(ctx, id, "session token", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("session_token = ?", token)
	})
}

// SetSubscription changes the plan and returns the updated account
func (r *Repository) SetSubscription(ctx context.Context, id uuid.UUID, sub Subscription) (*Account, error) {
	err := r.update(ctx, id, "subscription", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("subscription = ?", string(sub))
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// SetAvatar stores the avatar reference returned by avatar storage
func (r *Repository) SetAvatar(ctx context.Context, id uuid.UUID, url string) error {
	return r.update(ctx, id, "avatar", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("avatar_url = ?", url)
	})
}

// SetVerified writes the verification flag and token together
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID, verified bool, token *string) error {
	if verified && token != nil {
		return ErrVerifiedToken
	}
	return r.update(ctx, id, "verification state", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("verified = ?", verified).Set("verify_token = ?", token)
	})
}

func (r *Repository) update(ctx context.Context, id uuid.UUID, what string, set func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	q := r.db.NewUpdate().Model((*database.Account)(nil))
	result, err := set(q).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// mapDBAccountToModel converts database model to domain model
func mapDBAccountToModel(dba *database.Account) *Account {
	return &Account{
		ID:           dba.ID,
		Email:        dba.Email,
		Name:         dba.Name,
		PasswordHash: dba.PasswordHash,
		Subscription: Subscription(dba.Subscription),
		Verified:     dba.Verified,
		VerifyToken:  dba.VerifyToken,
		SessionToken: dba.SessionToken,
		AvatarURL:    dba.AvatarURL,
		CreatedAt:    dba.CreatedAt,
		UpdatedAt:    dba.UpdatedAt,
	}
}
