package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks the venue's shared secret. A bcrypt hash, when configured,
// takes priority over the plaintext secret.
type Verifier struct {
	plain []byte
	hash  []byte
}

func NewVerifier(plain, hash string) (*Verifier, error) {
	v := &Verifier{}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("password hash: %w", err)
		}
		v.hash = []byte(hash)
		return v, nil
	}
	if plain == "" {
		return nil, errors.New("password is required")
	}
	v.plain = []byte(plain)
	return v, nil
}

func (v *Verifier) Verify(password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	if v.hash != nil {
		if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	if subtle.ConstantTimeCompare(v.plain, []byte(password)) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
