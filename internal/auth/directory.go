// Package auth authenticates field workers and issues identity tokens.
package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// User is one directory entry. PasswordHash is a bcrypt hash.
type User struct {
	Identity     models.Identity
	Username     string
	PasswordHash []byte
}

// Directory is an in-memory user directory.
type Directory struct {
	users map[string]User
}

func NewDirectory(users []User) (*Directory, error) {
	d := &Directory{users: make(map[string]User, len(users))}
	for _, u := range users {
		if _, dup := d.users[u.Username]; dup {
			return nil, fmt.Errorf("duplicate username %q", u.Username)
		}
		d.users[u.Username] = u
	}
	return d, nil
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(password string) ([]byte, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

// Authenticate returns common.ErrUnauthorized for an unknown user and for a
// wrong password alike.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (models.Identity, error) {
	u, ok := d.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.Identity{}, common.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return models.Identity{}, common.ErrUnauthorized
	}

	return u.Identity, nil
}

var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoO5rYf1lq4Ff1t2Yaa5bGx8i0jBfQqGyW")
