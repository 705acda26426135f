package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// Digest returns the hex SHA-256 of secret. Single-use secrets (OTP codes,
// reset tokens) are stored only in this form.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// CompareDigest reports whether candidate hashes to digest, in constant time.
func CompareDigest(digest, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(Digest(candidate))) == 1
}

// RandomSecret returns n bytes from crypto/rand, hex encoded.
func RandomSecret(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("secret length must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NumericCode returns a uniformly random decimal string of exactly digits
// characters, leading zeros included.
func NumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("invalid code length %d", digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
