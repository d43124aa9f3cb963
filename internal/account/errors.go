package account

import "fmt"

// Kind identifies an account validation failure.
type Kind uint8

const (
	NoAppName Kind = iota + 1
	InvalidEmail
	NoPassword
)

func (k Kind) String() string {
	switch k {
	case NoAppName:
		return "account must have an app name"
	case InvalidEmail:
		return "email must look like local@domain.tld"
	case NoPassword:
		return "account must have a password"
	default:
		return fmt.Sprintf("account error %d", uint8(k))
	}
}

// Error is returned by New.
type Error struct {
	Kind  Kind
	Email string // offending input for InvalidEmail
}

func (e *Error) Error() string {
	if e.Kind == InvalidEmail && e.Email != "" {
		return fmt.Sprintf("%s: %q", e.Kind, e.Email)
	}
	return e.Kind.String()
}

// Is matches on Kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoAppName    = &Error{Kind: NoAppName}
	ErrInvalidEmail = &Error{Kind: InvalidEmail}
	ErrNoPassword   = &Error{Kind: NoPassword}
)
