package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/semmy-space/accman/internal/password"
)

// View is a display copy of an Account. It holds no reference into the
// account it was built from.
type View struct {
	ID        uuid.UUID `json:"id"`
	AppName   string    `json:"app_name"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Revealed  bool      `json:"revealed"`
	CreatedAt time.Time `json:"created_at"`
}

// Masked renders a with password.Mask in place of the password. Nothing is
// decrypted.
func (a Account) Masked() View {
	v := a.view()
	v.Password = password.Mask
	return v
}

// Unmasked renders a with its plaintext password. An encrypted password is
// decrypted on a copy with c; a stays as it was.
func (a Account) Unmasked(c *password.Cipher) (View, error) {
	pw := a.password
	if pw.IsEncrypted() {
		if err := pw.Decrypt(c); err != nil {
			return View{}, err
		}
	}

	v := a.view()
	v.Password = pw.Value()
	v.Revealed = true
	return v, nil
}

func (a Account) view() View {
	return View{
		ID:        a.id,
		AppName:   a.appName,
		Username:  a.username,
		Email:     a.email,
		CreatedAt: a.createdAt,
	}
}
