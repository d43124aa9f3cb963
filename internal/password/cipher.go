package password

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required length of the symmetric key (256 bits).
const KeySize = 32

// NonceSize is the length of the per-encryption nonce (96 bits).
const NonceSize = 12

// Algorithm selects the AEAD used to seal passwords.
type Algorithm string

const (
	AES256GCM        Algorithm = "aes-256-gcm"
	ChaCha20Poly1305 Algorithm = "chacha20-poly1305"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = AES256GCM

// Algorithms lists every supported algorithm name.
func Algorithms() []string {
	return []string{string(AES256GCM), string(ChaCha20Poly1305)}
}

// ParseAlgorithm maps a config or flag value to an Algorithm.
// An empty string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultAlgorithm, nil
	case AES256GCM:
		return AES256GCM, nil
	case ChaCha20Poly1305:
		return ChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("unknown cipher %q (valid: %s)", s, strings.Join(Algorithms(), ", "))
	}
}

// Cipher seals and opens password values with a fixed key.
// It is safe for concurrent use.
type Cipher struct {
	alg  Algorithm
	aead cipher.AEAD
	rand io.Reader
}

// NewCipher builds a Cipher from a 32-byte key.
func NewCipher(key []byte, alg Algorithm) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, newError(InvalidKey, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key)))
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case AES256GCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err != nil {
			return nil, newError(InvalidKey, fmt.Errorf("failed to create cipher: %w", err))
		}
		aead, err = cipher.NewGCM(block)
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, newError(InvalidKey, fmt.Errorf("unsupported algorithm %q", alg))
	}
	if err != nil {
		return nil, newError(InvalidKey, fmt.Errorf("failed to create AEAD: %w", err))
	}

	return &Cipher{alg: alg, aead: aead, rand: rand.Reader}, nil
}

// Algorithm returns the AEAD this cipher uses.
func (c *Cipher) Algorithm() Algorithm { return c.alg }

// seal encrypts plaintext with a fresh random nonce.
// The nonce is prepended to the ciphertext.
func (c *Cipher) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open reverses seal. Short input is reported as MalformedCiphertext and a
// failed tag check as AuthenticationFailed.
func (c *Cipher) open(sealed []byte) ([]byte, error) {
	if len(sealed) < NonceSize {
		return nil, newError(MalformedCiphertext, fmt.Errorf("ciphertext shorter than %d-byte nonce", NonceSize))
	}

	nonce, ciphertext := sealed[:NonceSize], sealed[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, newError(AuthenticationFailed, err)
	}
	return plaintext, nil
}
