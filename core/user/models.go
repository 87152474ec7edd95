package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-dashboard/core/session"
)

// User is an account of the identity provider.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	IsActive          bool      `json:"is_active"`
	PasswordHash      []byte    `json:"-"`
	SessionGeneration int       `json:"-"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
	LastLogin         time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) Identity() session.Identity {
	return session.Identity{UID: u.ID, Email: u.Email, Generation: u.SessionGeneration}
}

// HashPassword returns the bcrypt hash of pwd, as accepted by Service.Bootstrap.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
