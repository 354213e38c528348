package auth

import (
	"fmt"

	"github.com/alexedwards/argon2id"
)

// Hasher hashes and verifies passwords with argon2id.
//
// Error values returned from Hash and Verify never contain
// the plaintext or the digest.
type Hasher struct {
	params *argon2id.Params
}

func NewHasher(params *argon2id.Params) Hasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return Hasher{params: params}
}

func (h Hasher) Hash(plaintext string) (string, error) {
	digest, err := argon2id.CreateHash(plaintext, h.params)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return digest, nil
}

// Verify reports whether plaintext matches digest. A malformed
// digest surfaces as an error, not as a mismatch.
func (h Hasher) Verify(plaintext, digest string) (bool, error) {
	match, err := argon2id.ComparePasswordAndHash(plaintext, digest)
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return match, nil
}
