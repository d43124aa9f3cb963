package store

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/accman/internal/account"
	"github.com/semmy-space/accman/internal/password"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	c, err := password.NewCipher(bytes.Repeat([]byte{0x42}, password.KeySize), password.AES256GCM)
	require.NoError(t, err)
	return New(c)
}

func newAccount(t *testing.T, app, raw string) account.Account {
	t.Helper()
	pw, err := password.New(raw)
	require.NoError(t, err)
	a, err := account.New(app, "", "reesee@gmail.com", pw)
	require.NoError(t, err)
	return a
}

func TestInsertEncryptsStoredCopy(t *testing.T) {
	s := newTestStore(t)
	a := newAccount(t, "mail", "Secret1!")

	require.NoError(t, s.Insert(a))
	assert.False(t, a.Password().IsEncrypted(), "caller's account is not touched")

	got, err := s.Get("mail")
	require.NoError(t, err)
	assert.True(t, got.Password().IsEncrypted())
	assert.NotEqual(t, "Secret1!", got.Password().Value())

	pw := got.Password()
	require.NoError(t, pw.Decrypt(s.Cipher()))
	assert.Equal(t, "Secret1!", pw.Value())

	again, err := s.Get("mail")
	require.NoError(t, err)
	assert.True(t, again.Password().IsEncrypted(), "decrypting a fetched copy leaves the stored value sealed")
}

func TestInsertDuplicate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(newAccount(t, "x", "password!")))

	err := s.Insert(newAccount(t, "x", "password?"))
	assert.ErrorIs(t, err, ErrAccountAlreadyExists)
	assert.EqualError(t, err, `an account with the app "x" already exists`)
	assert.Equal(t, 1, s.Count())
}

func TestInsertAlreadyEncrypted(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(newAccount(t, "mail", "Secret1!")))

	fetched, err := s.Get("mail")
	require.NoError(t, err)
	require.NoError(t, s.Delete("mail"))

	err = s.Insert(fetched)
	assert.ErrorIs(t, err, password.ErrAlreadyEncrypted)
	assert.Equal(t, 0, s.Count())
}

func TestInsertWithoutCipher(t *testing.T) {
	s := New(nil)
	err := s.Insert(newAccount(t, "mail", "Secret1!"))
	assert.ErrorIs(t, err, password.ErrInvalidKey)
	assert.Equal(t, 0, s.Count())
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	for i := range 3 {
		require.NoError(t, s.Insert(newAccount(t, fmt.Sprintf("google%d", i), "password1!")))
	}
	assert.Equal(t, 3, s.Count())
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	pw, err := password.Generate(26)
	require.NoError(t, err)
	a, err := account.New("google", "", "reesee@gmail.com", pw)
	require.NoError(t, err)
	require.NoError(t, s.Insert(a))

	require.NoError(t, s.Delete("google"))
	assert.Equal(t, 0, s.Count())

	_, err = s.Get("google")
	assert.ErrorIs(t, err, ErrAccountDoesNotExist)
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(newAccount(t, "google", "password!")))

	err := s.Delete("yahoo")
	assert.ErrorIs(t, err, ErrAccountDoesNotExist)
	assert.EqualError(t, err, `an account with the app "yahoo" does not exist`)
	assert.Equal(t, 1, s.Count())
}

func TestModify(t *testing.T) {
	t.Run("same key", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Insert(newAccount(t, "google", "password!")))

		require.NoError(t, s.Modify("google", newAccount(t, "google", "changed!")))
		assert.Equal(t, 1, s.Count())

		views, err := s.List(true)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "changed!", views[0].Password)
	})

	t.Run("renamed key", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Insert(newAccount(t, "ggoogle", "password!")))

		require.NoError(t, s.Modify("ggoogle", newAccount(t, "google", "password!")))
		assert.Equal(t, []string{"google"}, s.Keys())

		got, err := s.Get("google")
		require.NoError(t, err)
		assert.True(t, got.Password().IsEncrypted())
	})

	t.Run("missing key", func(t *testing.T) {
		s := newTestStore(t)
		err := s.Modify("google", newAccount(t, "google", "password!"))
		assert.ErrorIs(t, err, ErrAccountDoesNotExist)
		assert.Equal(t, 0, s.Count())
	})
}

func TestModifyFailureLeavesStoreUnchanged(t *testing.T) {
	t.Run("rename onto existing key", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Insert(newAccount(t, "a", "password!")))
		require.NoError(t, s.Insert(newAccount(t, "b", "password?")))

		err := s.Modify("a", newAccount(t, "b", "other!pw"))
		assert.ErrorIs(t, err, ErrAccountAlreadyExists)
		assert.Equal(t, []string{"a", "b"}, s.Keys())

		views, err := s.List(true)
		require.NoError(t, err)
		assert.Equal(t, "password!", views[0].Password)
		assert.Equal(t, "password?", views[1].Password)
	})

	t.Run("encryption failure", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Insert(newAccount(t, "a", "password!")))

		sealed, err := s.Get("a")
		require.NoError(t, err)

		err = s.Modify("a", sealed)
		assert.ErrorIs(t, err, password.ErrAlreadyEncrypted)
		assert.Equal(t, 1, s.Count())

		got, err := s.Get("a")
		require.NoError(t, err)
		assert.True(t, got.Equal(sealed))
	})
}

func TestListScenario(t *testing.T) {
	s := newTestStore(t)
	raws := []string{"first#pass", "second#pass", "third#pass"}
	// insert out of order to check listing sorts by key
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, s.Insert(newAccount(t, fmt.Sprintf("google%d", i), raws[i])))
	}
	assert.Equal(t, 3, s.Count())

	masked, err := s.List(false)
	require.NoError(t, err)
	require.Len(t, masked, 3)
	for i, v := range masked {
		assert.Equal(t, fmt.Sprintf("google%d", i), v.AppName)
		assert.Equal(t, password.Mask, v.Password)
		assert.False(t, v.Revealed)
	}

	revealed, err := s.List(true)
	require.NoError(t, err)
	require.Len(t, revealed, 3)
	for i, v := range revealed {
		assert.Equal(t, fmt.Sprintf("google%d", i), v.AppName)
		assert.Equal(t, raws[i], v.Password)
		assert.True(t, v.Revealed)
	}

	for _, k := range s.Keys() {
		a, err := s.Get(k)
		require.NoError(t, err)
		assert.True(t, a.Password().IsEncrypted(), "listing must not decrypt stored passwords")
	}
}

func TestListEmpty(t *testing.T) {
	views, err := newTestStore(t).List(true)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListWrongKeyIsReported(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(newAccount(t, "mail", "Secret1!")))

	other, err := password.NewCipher(make([]byte, password.KeySize), password.AES256GCM)
	require.NoError(t, err)
	s.cipher = other

	_, err = s.List(true)
	assert.ErrorIs(t, err, password.ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), `"mail"`)

	masked, err := s.List(false)
	require.NoError(t, err)
	assert.Len(t, masked, 1)
}

func TestRoundTripEquality(t *testing.T) {
	s := newTestStore(t)
	original := newAccount(t, "google", "password!")
	require.NoError(t, s.Insert(original))

	stored, err := s.Get("google")
	require.NoError(t, err)
	pw := stored.Password()
	require.NoError(t, pw.Decrypt(s.Cipher()))

	assert.True(t, original.Equal(stored.WithPassword(pw)))
}

func TestConcurrentInsertDelete(t *testing.T) {
	s := newTestStore(t)

	accounts := make([]account.Account, 20)
	for i := range accounts {
		accounts[i] = newAccount(t, fmt.Sprintf("app%02d", i), "password!")
	}

	var wg sync.WaitGroup
	for i, a := range accounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Insert(a))
			if i%2 == 0 {
				assert.NoError(t, s.Delete(a.AppName()))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Count())
	assert.Len(t, s.Keys(), s.Count())
}
