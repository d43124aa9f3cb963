package password

import (
	"errors"
	"fmt"
)

// Kind identifies a password failure. The set is closed; callers can switch
// over every value.
type Kind uint8

const (
	TooShort Kind = iota + 1
	TooLong
	NoSpecialChars
	EncryptionFailed
	MalformedCiphertext
	AuthenticationFailed
	InvalidUTF8
	AlreadyEncrypted
	NotEncrypted
	InvalidKey
)

func (k Kind) String() string {
	switch k {
	case TooShort:
		return fmt.Sprintf("password must be at least %d characters long", MinLength)
	case TooLong:
		return fmt.Sprintf("password cannot be longer than %d characters", MaxLength)
	case NoSpecialChars:
		return "password must contain at least one character outside [a-z, A-Z, 0-9]"
	case EncryptionFailed:
		return "password encryption failed"
	case MalformedCiphertext:
		return "encrypted password is malformed"
	case AuthenticationFailed:
		return "encrypted password failed authentication (wrong key or tampered data)"
	case InvalidUTF8:
		return "decrypted password is not valid UTF-8"
	case AlreadyEncrypted:
		return "password is already encrypted"
	case NotEncrypted:
		return "password is not encrypted"
	case InvalidKey:
		return "invalid encryption key"
	default:
		return fmt.Sprintf("password error %d", uint8(k))
	}
}

// Error is returned by every fallible operation in this package.
type Error struct {
	Kind Kind
	Err  error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match on Kind, so errors.Is(err, ErrTooShort) works for any
// *Error of that kind regardless of its cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrTooShort             = &Error{Kind: TooShort}
	ErrTooLong              = &Error{Kind: TooLong}
	ErrNoSpecialChars       = &Error{Kind: NoSpecialChars}
	ErrEncryptionFailed     = &Error{Kind: EncryptionFailed}
	ErrMalformedCiphertext  = &Error{Kind: MalformedCiphertext}
	ErrAuthenticationFailed = &Error{Kind: AuthenticationFailed}
	ErrInvalidUTF8          = &Error{Kind: InvalidUTF8}
	ErrAlreadyEncrypted     = &Error{Kind: AlreadyEncrypted}
	ErrNotEncrypted         = &Error{Kind: NotEncrypted}
	ErrInvalidKey           = &Error{Kind: InvalidKey}
)

func newError(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// IsValidation reports whether err is one of the input validation kinds.
func IsValidation(err error) bool {
	return is(err, TooShort, TooLong, NoSpecialChars)
}

// IsCrypto reports whether err came from encryption, decryption or key setup.
func IsCrypto(err error) bool {
	return is(err, EncryptionFailed, MalformedCiphertext, AuthenticationFailed, InvalidUTF8, InvalidKey)
}

func is(err error, kinds ...Kind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	for _, k := range kinds {
		if pe.Kind == k {
			return true
		}
	}
	return false
}
