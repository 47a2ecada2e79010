// Package auth is the local password gate in front of the journal.
//
// It is a deterrent, not a credential store: the password is a single
// unsalted SHA-256 digest and the session token is a plain capability
// string that anyone able to read the store can reuse.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// DefaultTokenTTL is how long a login lasts.
const DefaultTokenTTL = 30 * 24 * time.Hour

const (
	recoveryAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	base36Alphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// HashPassword returns the hex SHA-256 of the password's UTF-8 bytes.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares password against a stored hash.
func VerifyPassword(password, hash string) bool {
	return HashPassword(password) == hash
}

// GenerateToken returns "<9 random base36 chars>.<unix millis>".
func GenerateToken(now time.Time) string {
	return randomString(base36Alphabet, 9) + "." + strconv.FormatInt(now.UnixMilli(), 10)
}

// ValidateToken accepts a token issued less than ttl before now. Malformed
// tokens are rejected.
func ValidateToken(token string, now time.Time, ttl time.Duration) bool {
	_, stamp, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	ms, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return false
	}
	return now.Sub(time.UnixMilli(ms)) < ttl
}

// GenerateRecoveryCode returns a code of the form XXXX-XXXX-XXXX.
func GenerateRecoveryCode() string {
	raw := randomString(recoveryAlphabet, 12)
	return raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12]
}

// HashRecoveryCode hashes the upper-cased code, so codes are matched
// without regard to case.
func HashRecoveryCode(code string) string {
	return HashPassword(strings.ToUpper(code))
}

// VerifyRecoveryCode compares code against a stored hash.
func VerifyRecoveryCode(code, hash string) bool {
	return HashRecoveryCode(code) == hash
}

func randomString(alphabet string, n int) string {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		b.WriteByte(alphabet[v.Int64()])
	}
	return b.String()
}
