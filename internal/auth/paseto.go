package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims represents the claims carried by a session token
type TokenClaims struct {
	AccountID string    `json:"sub"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{symmetricKey: key}, nil
}

// CreateToken generates a new PASETO v4.local token bound to accountID
func (s *PasetoService) CreateToken(accountID uuid.UUID, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(duration))
	token.SetSubject(accountID.String())
	token.SetJti(uuid.NewString())

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken validates a PASETO v4.local token and returns the claims
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	token, err := paseto.NewParser().ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// a token that decrypts once the expiry rule is dropped is expired, not forged
		if _, perr := paseto.NewParserWithoutExpiryCheck().ParseV4Local(s.symmetricKey, tokenStr, nil); perr == nil {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	accountID, err := token.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}

	jti, err := token.GetJti()
	if err != nil {
		return nil, ErrInvalidToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		AccountID: accountID,
		TokenID:   jti,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
