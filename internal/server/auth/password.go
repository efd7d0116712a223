// Package auth implements the security primitives of the directory:
// password hashing, token issuance/validation, and the self-or-admin
// authorization rule.
package auth

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies plaintext passwords with bcrypt. The salt is
// embedded in the digest, so verification needs no side channel. A Hasher
// carries no mutable state and is safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of the plaintext.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the stored digest. It never
// returns an error: a malformed digest simply verifies as false.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
