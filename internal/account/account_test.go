package account

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/accman/internal/password"
)

func mustPassword(t *testing.T, raw string) password.Password {
	t.Helper()
	p, err := password.New(raw)
	require.NoError(t, err)
	return p
}

func testCipher(t *testing.T) *password.Cipher {
	t.Helper()
	c, err := password.NewCipher(bytes.Repeat([]byte{0x42}, password.KeySize), password.AES256GCM)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	pw := mustPassword(t, "password!")
	before := time.Now()

	a, err := New("google", "", "reesee@gmail.com", pw)
	require.NoError(t, err)

	assert.Equal(t, "google", a.AppName())
	assert.False(t, a.HasUsername())
	assert.Equal(t, "reesee@gmail.com", a.Email())
	assert.True(t, a.Password().Equal(pw))
	assert.False(t, a.CreatedAt().Before(before))
	assert.NotEqual(t, uuid.Nil, a.ID())
}

func TestNewValidation(t *testing.T) {
	pw := mustPassword(t, "password!")

	tests := []struct {
		name    string
		app     string
		email   string
		wantErr error
	}{
		{name: "empty app name", app: "", email: "a@b.com", wantErr: ErrNoAppName},
		{name: "blank app name", app: "   ", email: "a@b.com", wantErr: ErrNoAppName},
		{name: "missing at", app: "x", email: "reesee.gmail.com", wantErr: ErrInvalidEmail},
		{name: "missing tld", app: "x", email: "reesee@gmail", wantErr: ErrInvalidEmail},
		{name: "empty local part", app: "x", email: "@gmail.com", wantErr: ErrInvalidEmail},
		{name: "two ats", app: "x", email: "a@b@c.com", wantErr: ErrInvalidEmail},
		{name: "space inside", app: "x", email: "a b@c.com", wantErr: ErrInvalidEmail},
		{name: "empty email", app: "x", email: "", wantErr: ErrInvalidEmail},
		{name: "subdomain", app: "x", email: "a@mail.example.co.uk"},
		{name: "plus tag", app: "x", email: "a+tag@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.app, "", tt.email, pw)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewRejectsZeroPassword(t *testing.T) {
	_, err := New("google", "", "reesee@gmail.com", password.Password{})
	assert.ErrorIs(t, err, ErrNoPassword)
	assert.Equal(t, "account must have a password", err.Error())
}

func TestNewErrorsAreFreshValues(t *testing.T) {
	_, err := New(" ", "", "reesee@gmail.com", mustPassword(t, "password!"))
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.NotSame(t, ErrNoAppName, ae)
	assert.ErrorIs(t, err, ErrNoAppName)

	ae.Kind = InvalidEmail
	assert.Equal(t, NoAppName, ErrNoAppName.Kind)
}

func TestNewTrimsInput(t *testing.T) {
	a, err := New("  mail ", " reese ", " reese@mail.com ", mustPassword(t, "Secret1!"))
	require.NoError(t, err)
	assert.Equal(t, "mail", a.AppName())
	assert.Equal(t, "reese", a.Username())
	assert.Equal(t, "reese@mail.com", a.Email())
}

func TestNewKeepsPasswordState(t *testing.T) {
	c := testCipher(t)
	pw := mustPassword(t, "Secret1!")
	require.NoError(t, pw.Encrypt(c))

	a, err := New("mail", "", "reese@mail.com", pw)
	require.NoError(t, err)
	assert.True(t, a.Password().IsEncrypted())

	plain := mustPassword(t, "Secret1!")
	b, err := New("mail", "", "reese@mail.com", plain)
	require.NoError(t, err)
	assert.False(t, b.Password().IsEncrypted())
}

func TestEqual(t *testing.T) {
	a, err := New("google", "one", "reesee@gmail.com", mustPassword(t, "password!"))
	require.NoError(t, err)
	b, err := New("google", "two", "reesee@gmail.com", mustPassword(t, "password!"))
	require.NoError(t, err)

	assert.True(t, a.Equal(b), "username, id and timestamp are not part of equality")

	c, err := New("google", "", "other@gmail.com", mustPassword(t, "password!"))
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	d, err := New("google", "", "reesee@gmail.com", mustPassword(t, "password?"))
	require.NoError(t, err)
	assert.False(t, a.Equal(d))
}

func TestPasswordAccessorReturnsCopy(t *testing.T) {
	a, err := New("mail", "", "reese@mail.com", mustPassword(t, "Secret1!"))
	require.NoError(t, err)

	pw := a.Password()
	require.NoError(t, pw.Encrypt(testCipher(t)))
	assert.False(t, a.Password().IsEncrypted())
}

func TestMaskedAndUnmasked(t *testing.T) {
	c := testCipher(t)
	pw := mustPassword(t, "Secret1!")
	require.NoError(t, pw.Encrypt(c))

	a, err := New("mail", "reese", "reese@mail.com", pw)
	require.NoError(t, err)

	masked := a.Masked()
	assert.Equal(t, password.Mask, masked.Password)
	assert.False(t, masked.Revealed)
	assert.Equal(t, "mail", masked.AppName)
	assert.Equal(t, "reese", masked.Username)

	unmasked, err := a.Unmasked(c)
	require.NoError(t, err)
	assert.Equal(t, "Secret1!", unmasked.Password)
	assert.True(t, unmasked.Revealed)
	assert.True(t, a.Password().IsEncrypted(), "unmasking must not decrypt the account's own password")
}

func TestUnmaskedPlaintext(t *testing.T) {
	a, err := New("mail", "", "reese@mail.com", mustPassword(t, "Secret1!"))
	require.NoError(t, err)

	v, err := a.Unmasked(nil)
	require.NoError(t, err)
	assert.Equal(t, "Secret1!", v.Password)
}

func TestUnmaskedWrongKey(t *testing.T) {
	pw := mustPassword(t, "Secret1!")
	require.NoError(t, pw.Encrypt(testCipher(t)))
	a, err := New("mail", "", "reese@mail.com", pw)
	require.NoError(t, err)

	other, err := password.NewCipher(make([]byte, password.KeySize), password.AES256GCM)
	require.NoError(t, err)

	_, err = a.Unmasked(other)
	assert.ErrorIs(t, err, password.ErrAuthenticationFailed)
}
