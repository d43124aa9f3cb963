package store

import "fmt"

// Kind identifies a store precondition failure.
type Kind uint8

const (
	AccountAlreadyExists Kind = iota + 1
	AccountDoesNotExist
)

func (k Kind) String() string {
	switch k {
	case AccountAlreadyExists:
		return "account already exists"
	case AccountDoesNotExist:
		return "account does not exist"
	default:
		return fmt.Sprintf("store error %d", uint8(k))
	}
}

// Error reports which key a store operation tripped over.
type Error struct {
	Kind    Kind
	AppName string
}

func (e *Error) Error() string {
	switch e.Kind {
	case AccountAlreadyExists:
		return fmt.Sprintf("an account with the app %q already exists", e.AppName)
	case AccountDoesNotExist:
		return fmt.Sprintf("an account with the app %q does not exist", e.AppName)
	default:
		return e.Kind.String()
	}
}

// Is matches on Kind, ignoring AppName.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrAccountAlreadyExists = &Error{Kind: AccountAlreadyExists}
	ErrAccountDoesNotExist  = &Error{Kind: AccountDoesNotExist}
)

func alreadyExists(app string) error { return &Error{Kind: AccountAlreadyExists, AppName: app} }
func doesNotExist(app string) error  { return &Error{Kind: AccountDoesNotExist, AppName: app} }
