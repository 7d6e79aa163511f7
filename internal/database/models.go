package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the persisted row behind account.Account
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	Name         string    `bun:"name,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Subscription string    `bun:"subscription,notnull"`
	Verified     bool      `bun:"verified,notnull"`
	VerifyToken  *string   `bun:"verify_token,unique"`
	SessionToken *string   `bun:"session_token"`
	AvatarURL    *string   `bun:"avatar_url"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}
