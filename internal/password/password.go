// Package password implements the validated secret held by every account.
//
// A Password is always in one of two states: plaintext, or encrypted as
// lowercase hex of nonce ‖ ciphertext ‖ tag. Only Encrypt and Decrypt move
// between them.
package password

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"unicode/utf8"
)

const (
	MinLength = 8
	MaxLength = 256
)

// Mask replaces a password wherever it is displayed without being revealed.
const Mask = "********"

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	symbols      = "!@#$%&*?-_+="

	// Alphabet is the character set Generate draws from.
	Alphabet = alphanumeric + symbols
)

// generateAttempts bounds the redraws when a candidate has no symbol.
// At length 8 a draw misses with probability ~0.24, so 64 attempts fail
// with probability below 1e-39.
const generateAttempts = 64

// Password is a validated secret. The zero value is an empty plaintext
// password and fails every validation; build one with New or Generate.
type Password struct {
	value     string
	encrypted bool
}

// New validates raw and returns it as a plaintext Password.
func New(raw string) (Password, error) {
	if err := validate(raw); err != nil {
		return Password{}, err
	}
	return Password{value: raw}, nil
}

// Generate returns a random password of length characters drawn uniformly
// from Alphabet. Draws that contain no symbol are discarded, so the result
// always passes the same validation as New.
func Generate(length int) (Password, error) {
	if length < MinLength {
		return Password{}, newError(TooShort, nil)
	}
	if length > MaxLength {
		return Password{}, newError(TooLong, nil)
	}

	var lastErr error
	for range generateAttempts {
		raw, err := randomString(length)
		if err != nil {
			return Password{}, fmt.Errorf("failed to generate password: %w", err)
		}
		p, err := New(raw)
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	return Password{}, lastErr
}

func randomString(length int) (string, error) {
	size := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Set replaces the value after validating it like New. The encryption flag
// is left alone; callers storing the result must encrypt it again.
func (p *Password) Set(raw string) error {
	if err := validate(raw); err != nil {
		return err
	}
	p.value = raw
	return nil
}

// Encrypt seals the plaintext value under c with a fresh nonce.
func (p *Password) Encrypt(c *Cipher) error {
	if p.encrypted {
		return newError(AlreadyEncrypted, nil)
	}
	if c == nil {
		return newError(InvalidKey, fmt.Errorf("no cipher configured"))
	}

	sealed, err := c.seal([]byte(p.value))
	if err != nil {
		return newError(EncryptionFailed, err)
	}
	p.value = hex.EncodeToString(sealed)
	p.encrypted = true
	return nil
}

// Decrypt restores the plaintext value. On failure the password is left
// untouched and still encrypted.
func (p *Password) Decrypt(c *Cipher) error {
	if !p.encrypted {
		return newError(NotEncrypted, nil)
	}
	if c == nil {
		return newError(InvalidKey, fmt.Errorf("no cipher configured"))
	}

	sealed, err := hex.DecodeString(p.value)
	if err != nil {
		return newError(MalformedCiphertext, err)
	}
	plaintext, err := c.open(sealed)
	if err != nil {
		return err
	}
	if !utf8.Valid(plaintext) {
		return newError(InvalidUTF8, nil)
	}

	p.value = string(plaintext)
	p.encrypted = false
	return nil
}

// Value returns the payload: the secret when plaintext, the hex blob when
// encrypted.
func (p Password) Value() string { return p.value }

// IsEncrypted reports the current state.
func (p Password) IsEncrypted() bool { return p.encrypted }

// Len returns the payload length in characters.
func (p Password) Len() int { return utf8.RuneCountInString(p.value) }

// Equal compares payload and state.
func (p Password) Equal(other Password) bool {
	return p.value == other.value && p.encrypted == other.encrypted
}

// String always returns Mask so a Password never leaks through fmt.
func (p Password) String() string { return Mask }

// GoString keeps %#v masked as well.
func (p Password) GoString() string {
	return fmt.Sprintf("password.Password{encrypted: %t}", p.encrypted)
}

func validate(raw string) error {
	n := utf8.RuneCountInString(raw)
	switch {
	case n < MinLength:
		return newError(TooShort, nil)
	case n > MaxLength:
		return newError(TooLong, nil)
	case !hasSpecial(raw):
		return newError(NoSpecialChars, nil)
	}
	return nil
}

func hasSpecial(s string) bool {
	for _, r := range s {
		if !isAlphanumeric(r) {
			return true
		}
	}
	return false
}

func isAlphanumeric(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}
