package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const DefaultTokenLength = 32 // 256 bits

// TokenPair holds a session token and its storage form. Only the hash
// is ever persisted.
type TokenPair struct {
	Token string // value returned to client
	Hash  string // value in storage
}

// GenerateHashedToken creates a random URL-safe token of byteLength
// random bytes alongside its sha256 hash. Non-positive lengths use the
// default.
func GenerateHashedToken(byteLength int) (*TokenPair, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenLength
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return nil, err
	}
	token := base64.RawURLEncoding.EncodeToString(bytes)

	return &TokenPair{
		Token: token,
		Hash:  HashToken(token),
	}, nil
}

// VerifyToken checks a presented token against its stored hash.
func VerifyToken(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, errors.New("token and hash cannot be empty")
	}

	tokenHash := HashToken(token)

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(storedHash)) == 1, nil
}

// HashToken returns the hex-encoded sha256 of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
