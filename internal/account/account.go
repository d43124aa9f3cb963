// Package account defines the credential record kept by the store.
package account

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/semmy-space/accman/internal/password"
)

// emailPattern accepts a basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s.]+(\.[^@\s.]+)+$`)

// Account is a named credential. Values are immutable once built; to change
// an account, build a new one and hand it to the store.
type Account struct {
	id        uuid.UUID
	appName   string
	username  string
	email     string
	password  password.Password
	createdAt time.Time
}

// New validates the fields and stamps the creation time. The password is
// stored as given; its encryption state is not touched. A zero Password,
// one never built by password.New or password.Generate, is rejected.
func New(appName, username, email string, pw password.Password) (Account, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Account{}, &Error{Kind: NoAppName}
	}

	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return Account{}, &Error{Kind: InvalidEmail, Email: email}
	}

	if !pw.IsEncrypted() && pw.Value() == "" {
		return Account{}, &Error{Kind: NoPassword}
	}

	return Account{
		id:        uuid.New(),
		appName:   appName,
		username:  strings.TrimSpace(username),
		email:     email,
		password:  pw,
		createdAt: time.Now(),
	}, nil
}

func (a Account) ID() uuid.UUID { return a.id }

// AppName is the account's key in the store.
func (a Account) AppName() string { return a.appName }

// Username returns the username, or "" when the app does not use one.
func (a Account) Username() string { return a.username }

func (a Account) HasUsername() bool { return a.username != "" }

func (a Account) Email() string { return a.email }

// Password returns a copy; changing it does not affect the account.
func (a Account) Password() password.Password { return a.password }

func (a Account) CreatedAt() time.Time { return a.createdAt }

// WithPassword returns a copy of a holding pw. The store uses it to seal the
// copy it keeps.
func (a Account) WithPassword(pw password.Password) Account {
	a.password = pw
	return a
}

// Equal compares app name, email and password. Username, ID and creation
// time are ignored.
func (a Account) Equal(other Account) bool {
	return a.appName == other.appName &&
		a.email == other.email &&
		a.password.Equal(other.password)
}

func (a Account) String() string {
	return fmt.Sprintf("%s <%s>", a.appName, a.email)
}
