// Package cryptox holds the secret primitives of the auth flow: slow salted
// password hashes, fast digests for single-use secrets and random secret
// generation.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const algorithmID = "argon2id"

var (
	ErrInvalidHash       = errors.New("invalid password hash")
	ErrUnsupportedScheme = errors.New("unsupported password hash scheme")
)

// Params are the argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams are used by HashPassword.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Time:        1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher hashes and verifies passwords with a fixed set of argon2id params.
// It is safe for concurrent use.
type Hasher struct {
	params Params

	dummyOnce sync.Once
	dummy     string
}

func NewHasher(p Params) *Hasher {
	return &Hasher{params: p}
}

var defaultHasher = NewHasher(DefaultParams)

// HashPassword hashes pw with DefaultParams.
func HashPassword(pw string) (string, error) { return defaultHasher.Hash(pw) }

// ComparePassword reports whether pw matches hash.
func ComparePassword(hash, pw string) bool { return defaultHasher.Compare(hash, pw) }

// NeedsRehash reports whether hash should be replaced on next successful login.
func NeedsRehash(hash string) bool { return defaultHasher.NeedsRehash(hash) }

// Hash returns a PHC encoded argon2id hash of pw with a fresh random salt.
func (h *Hasher) Hash(pw string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(pw), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare reports whether pw matches hash. Both argon2id PHC strings and
// bcrypt hashes ($2a$, $2b$, $2y$) are understood; anything else is a mismatch.
func (h *Hasher) Compare(hash, pw string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
	}

	p, err := parsePHC(hash)
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(pw), p.salt, p.params.Time, p.params.Memory, p.params.Parallelism, p.params.KeyLength)
	return subtle.ConstantTimeCompare(key, p.key) == 1
}

// CompareDummy burns the same work as a real comparison. It is used when the
// account does not exist so both paths take similar time.
func (h *Hasher) CompareDummy(pw string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hash("streamforge-dummy-password")
	})
	_ = h.Compare(h.dummy, pw)
}

// NeedsRehash is true for bcrypt hashes and for argon2id hashes weaker than
// the hasher's params.
func (h *Hasher) NeedsRehash(hash string) bool {
	if isBcrypt(hash) {
		return true
	}
	p, err := parsePHC(hash)
	if err != nil {
		return true
	}
	return p.params.Memory < h.params.Memory ||
		p.params.Time < h.params.Time ||
		p.params.Parallelism < h.params.Parallelism ||
		p.params.KeyLength != h.params.KeyLength
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func parsePHC(encoded string) (*phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrInvalidHash
	}
	if parts[1] != algorithmID {
		return nil, ErrUnsupportedScheme
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return nil, ErrInvalidHash
	}

	var out phc
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, ErrInvalidHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return nil, ErrInvalidHash
		}
		switch k {
		case "m":
			out.params.Memory = uint32(n)
		case "t":
			out.params.Time = uint32(n)
		case "p":
			if n > 255 {
				return nil, ErrInvalidHash
			}
			out.params.Parallelism = uint8(n)
		default:
			return nil, ErrInvalidHash
		}
	}
	if out.params.Memory == 0 || out.params.Time == 0 || out.params.Parallelism == 0 {
		return nil, ErrInvalidHash
	}

	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) == 0 {
		return nil, ErrInvalidHash
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 {
		return nil, ErrInvalidHash
	}
	out.params.SaltLength = uint32(len(out.salt))
	out.params.KeyLength = uint32(len(out.key))

	return &out, nil
}
