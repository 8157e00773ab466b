package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var ErrWeakPassword = errors.New("Please provide a strong password: at least 8 characters with upper and lower case letters and a digit or symbol")

// bcrypt ignores input past 72 bytes and newer x/crypto rejects it outright.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("Password must be at most 72 bytes")

// HashCost is bcrypt's work factor. Tests lower it.
var HashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckStrength requires 8+ characters, an upper and a lower case letter,
// and at least one digit or symbol. Passwords bcrypt cannot hash fail too.
func CheckStrength(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < 8 {
		return ErrWeakPassword
	}
	var upper, lower, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}
	if !upper || !lower || !other {
		return ErrWeakPassword
	}
	return nil
}

// NewResetToken returns a random token for the user and the digest to store.
func NewResetToken() (token, digest string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, HashResetToken(token), nil
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
