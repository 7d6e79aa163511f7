package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-accounts-api/internal/account"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
)

// SessionTokenTTL is the lifetime of a session token issued at login
const SessionTokenTTL = 2 * time.Hour

var (
	ErrEmailInUse          = errors.New("email in use")
	ErrInvalidCredentials  = errors.New("invalid credential")
	ErrAccountNotFound     = errors.New("user not found")
	ErrAlreadyVerified     = errors.New("verification has already been passed")
	ErrInvalidSubscription = account.ErrInvalidSubscription
)

// Profile is the public projection of an account
type Profile struct {
	Email        string               `json:"email"`
	Subscription account.Subscription `json:"subscription"`
}

// AvatarProfile is returned after an avatar update
type AvatarProfile struct {
	Email        string               `json:"email"`
	Subscription account.Subscription `json:"subscription"`
	AvatarURL    string               `json:"avatarURL"`
}

// Session is the result of a successful login
type Session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// SignupInput carries the fields accepted at signup
type SignupInput struct {
	Email        string
	Password     string
	Name         string
	Subscription account.Subscription
}

// AvatarUpload is an image already validated by the transport layer
type AvatarUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service owns the account lifecycle: signup, login, logout, verification
// and profile updates
type Service struct {
	accounts AccountStore
	hasher   PasswordHasher
	tokens   TokenGenerator
	sessions TokenService
	notifier Notifier
	avatars  AvatarStorage
	logger   *logging.Logger

	// in-flight verification emails
	pending sync.WaitGroup

	// digest checked when the email is unknown, so Login costs the same
	// either way
	dummyOnce   sync.Once
	dummyDigest string
}

func NewService(
	accounts AccountStore,
	hasher PasswordHasher,
	tokens TokenGenerator,
	sessions TokenService,
	notifier Notifier,
	avatars AvatarStorage,
	logger *logging.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		notifier: notifier,
		avatars:  avatars,
		logger:   logger,
	}
}

// Signup creates an unverified account and sends the verification email in
// the background
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Profile, error) {
	email := account.NormalizeEmail(in.Email)

	// Advisory only: the store's unique constraint decides concurrent races
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, account.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	sub := in.Subscription
	if sub == "" {
		sub = account.DefaultSubscription
	}
	if _, err := account.ParseSubscription(string(sub)); err != nil {
		return nil, ErrInvalidSubscription
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordTooLong) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verifyToken, err := s.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	created, err := s.accounts.Create(ctx, account.CreateParams{
		Email:        email,
		Name:         in.Name,
		PasswordHash: passwordHash,
		Subscription: sub,
		VerifyToken:  verifyToken,
	})
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.sendVerification(ctx, verifyToken, created.Email, created.Name)

	return &Profile{Email: created.Email, Subscription: created.Subscription}, nil
}

// Login checks credentials and stores a fresh session token, replacing any
// previous one. Unknown email, wrong password and unverified account all
// return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !s.hasher.Verify(password, existing.PasswordHash) || !existing.Verified {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.CreateToken(existing.ID, SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	if err := s.accounts.SetSessionToken(ctx, existing.ID, &token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}

	return &Session{
		Token: token,
		User:  Profile{Email: existing.Email, Subscription: existing.Subscription},
	}, nil
}

// Logout clears the session token. Clearing an already empty session succeeds.
func (s *Service) Logout(ctx context.Context, accountID uuid.UUID) error {
	if err := s.accounts.SetSessionToken(ctx, accountID, nil); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// Current returns the public projection of the account
func (s *Service) Current(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &Profile{Email: acc.Email, Subscription: acc.Subscription}, nil
}

// UpdateSubscription moves the account to another tier
func (s *Service) UpdateSubscription(ctx context.Context, accountID uuid.UUID, tier string) (*Profile, error) {
	sub, err := account.ParseSubscription(tier)
	if err != nil {
		return nil, ErrInvalidSubscription
	}

	acc, err := s.accounts.SetSubscription(ctx, accountID, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	return &Profile{Email: acc.Email, Subscription: acc.Subscription}, nil
}

// UpdateAvatar stores the image and records its URL on the account
func (s *Service) UpdateAvatar(ctx context.Context, accountID uuid.UUID, upload AvatarUpload) (*AvatarProfile, error) {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	ext, ok := avatarExtensions[upload.ContentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(upload.Filename))
	}
	key := fmt.Sprintf("%s-%d%s", acc.ID, time.Now().UnixNano(), ext)
	avatarURL, err := s.avatars.Save(ctx, key, upload.ContentType, upload.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.accounts.SetAvatar(ctx, acc.ID, avatarURL); err != nil {
		s.removeAvatar(ctx, avatarURL)
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	if acc.AvatarURL != nil && *acc.AvatarURL != "" && *acc.AvatarURL != avatarURL {
		s.removeAvatar(ctx, *acc.AvatarURL)
	}

	return &AvatarProfile{Email: acc.Email, Subscription: acc.Subscription, AvatarURL: avatarURL}, nil
}

// removeAvatar deletes a stored image. Failures only leave an orphaned
// file behind, so they are logged.
func (s *Service) removeAvatar(ctx context.Context, url string) {
	if err := s.avatars.Delete(context.WithoutCancel(ctx), url); err != nil {
		s.logger.Warn("failed to remove avatar", "url", url, "error", err.Error())
	}
}

func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("login-timing-placeholder")
		if err != nil {
			s.logger.Error("failed to build placeholder digest", "error", err.Error())
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

// VerifyEmail marks the account holding token as verified and clears the
// token, so the link works exactly once
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	acc, err := s.accounts.FindByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to find account by token: %w", err)
	}

	if err := s.accounts.SetVerified(ctx, acc.ID, true, nil); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	return nil
}

// ResendVerification re-sends the email for the account that still holds
// token. Verification clears the token, so the ErrAlreadyVerified branch is
// only reachable if the store ever keeps a token on a verified account.
func (s *Service) ResendVerification(ctx context.Context, token string) error {
	acc, err := s.accounts.FindByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to find account by token: %w", err)
	}

	return s.resend(ctx, acc)
}

// ResendVerificationByEmail re-sends the current verification token for an
// unverified account looked up by email
func (s *Service) ResendVerificationByEmail(ctx context.Context, email string) error {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to find account by email: %w", err)
	}

	return s.resend(ctx, acc)
}

func (s *Service) resend(ctx context.Context, acc *account.Account) error {
	if acc.Verified || acc.VerifyToken == nil {
		return ErrAlreadyVerified
	}

	s.sendVerification(ctx, *acc.VerifyToken, acc.Email, acc.Name)
	return nil
}

// sendVerification delivers the email on a detached goroutine. The caller
// never waits for it and a failure is only logged.
func (s *Service) sendVerification(ctx context.Context, token, email, name string) {
	emailCtx := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.notifier.SendVerificationEmail(emailCtx, token, email, name); err != nil {
			s.logger.Warn("failed to send verification email", "email", email, "error", err)
		}
	}()
}

// Wait blocks until every in-flight verification email has finished or ctx
// is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
