package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashRefreshToken returns the hex SHA-256 of token. The mock backend stores only this value.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshTokenMatches compares token against a stored hash in constant time.
func RefreshTokenMatches(token, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(token)), []byte(storedHash)) == 1
}
