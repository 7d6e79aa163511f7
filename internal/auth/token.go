package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomTokenGenerator creates verification tokens from crypto/rand bytes,
// encoded so they can be embedded in a URL path
type RandomTokenGenerator struct {
	size int
}

func NewRandomTokenGenerator(size int) *RandomTokenGenerator {
	if size < 16 {
		size = 32
	}
	return &RandomTokenGenerator{size: size}
}

func (g *RandomTokenGenerator) Generate() (string, error) {
	b := make([]byte, g.size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
