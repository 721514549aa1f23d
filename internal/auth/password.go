package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

// Password length bounds, in characters.
const (
	MinPasswordLength = 10
	MaxPasswordLength = 128
)

// HashParams are the Argon2id cost parameters recorded in every hash.
type HashParams struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultHashParams is used for new hashes. Stored hashes with other
// parameters still verify and are upgraded by Authenticate.
var DefaultHashParams = HashParams{
	Memory:  64 * 1024,
	Time:    3,
	Threads: 1,
	SaltLen: 16,
	KeyLen:  32,
}

// CheckPassword applies the account password policy.
func CheckPassword(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < MinPasswordLength:
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinPasswordLength)
	case n > MaxPasswordLength:
		return fmt.Errorf("%w: must be at most %d characters", ErrWeakPassword, MaxPasswordLength)
	}
	return nil
}

// HashPassword hashes password with DefaultHashParams.
func HashPassword(password string) (string, error) {
	return DefaultHashParams.Hash(password)
}

// Hash returns password as a PHC string:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
func (p HashParams) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return p.encode(salt, key), nil
}

func (p HashParams) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// VerifyPassword checks password against a PHC hash in constant time,
// using the parameters stored in the hash.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// NeedsRehash reports whether encoded was produced with parameters other
// than DefaultHashParams, or cannot be decoded at all.
func NeedsRehash(encoded string) bool {
	p, _, _, err := decodeHash(encoded)
	return err != nil || p != DefaultHashParams
}

func decodeHash(encoded string) (p HashParams, salt, key []byte, err error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" { //nolint:mnd // "", alg, version, params, salt, key
		return p, nil, nil, fmt.Errorf("%w: expected 6 fields", ErrMalformedHash)
	}
	if fields[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, fields[1])
	}
	if fields[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, fields[2])
	}
	if _, err = fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}
	if salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	if len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: empty key", ErrMalformedHash)
	}
	p.SaltLen = uint32(len(salt)) //nolint:gosec // G115: decoded from a short string
	p.KeyLen = uint32(len(key))   //nolint:gosec // G115: decoded from a short string
	return p, salt, key, nil
}
