// Package credential hashes login secrets. The record store only ever sees
// the opaque hash; nothing here is reversible.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way transform applied to raw credentials before storage.
type Hasher interface {
	Hash(raw string) (string, error)
	Matches(hash, raw string) bool
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher. A cost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty credential")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(out), nil
}

func (h *BcryptHasher) Matches(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
