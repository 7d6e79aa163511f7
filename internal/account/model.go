package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subscription is the plan level attached to an account
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"

	DefaultSubscription = SubscriptionStarter
)

var ErrInvalidSubscription = errors.New("invalid subscription")

// Subscriptions lists every accepted tier in ascending order
func Subscriptions() []Subscription {
	return []Subscription{SubscriptionStarter, SubscriptionPro, SubscriptionBusiness}
}

// ParseSubscription validates s against the known tiers
func ParseSubscription(s string) (Subscription, error) {
	for _, sub := range Subscriptions() {
		if string(sub) == s {
			return sub, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSubscription, s)
}

type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Subscription Subscription
	Verified     bool
	VerifyToken  *string
	SessionToken *string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams holds the fields required for a new, unverified account
type CreateParams struct {
	Email        string
	Name         string
	PasswordHash string
	Subscription Subscription
	VerifyToken  string
}

// NormalizeEmail is applied to every email before it reaches the store, so
// uniqueness and lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
