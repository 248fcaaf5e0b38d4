package domain

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Admin is a platform operator account. Passwords are stored as bcrypt
// hashes only.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdmin creates an admin account with a hashed password
func NewAdmin(id, username, password string) (*Admin, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(username) == "" {
		return nil, ErrInvalidUserID
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Admin{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}, nil
}

// VerifyPassword checks a candidate password against the stored hash
func (a *Admin) VerifyPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
