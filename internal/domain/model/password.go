package model

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"recipebox/internal/common/security"
)

var (
	ErrPasswordNotReadable = errors.New("password is not a readable attribute")
	ErrPasswordNotSet      = errors.New("password hash is not set")
)

// Password is a write-only credential. It can be set from plaintext and
// verified against plaintext, and it moves to and from the database through
// driver.Valuer and sql.Scanner. Nothing else can read it.
type Password struct {
	hash string
}

// Set replaces the stored hash with a fresh salted hash of plaintext.
func (p *Password) Set(plaintext string) error {
	hash, err := security.HashPassword(plaintext)
	if err != nil {
		return err
	}
	p.hash = hash
	return nil
}

func (p Password) Verify(plaintext string) bool {
	return security.CheckPasswordHash(plaintext, p.hash)
}

func (p Password) IsSet() bool {
	return p.hash != ""
}

func (Password) String() string { return "[REDACTED]" }

func (Password) GoString() string { return "model.Password{[REDACTED]}" }

// MarshalJSON always fails so a password can never leak into a response.
func (Password) MarshalJSON() ([]byte, error) {
	return nil, ErrPasswordNotReadable
}

func (Password) MarshalText() ([]byte, error) {
	return nil, ErrPasswordNotReadable
}

func (p Password) Value() (driver.Value, error) {
	if p.hash == "" {
		return nil, ErrPasswordNotSet
	}
	return p.hash, nil
}

func (p *Password) Scan(src any) error {
	switch v := src.(type) {
	case string:
		p.hash = v
	case []byte:
		p.hash = string(v)
	case nil:
		return ErrPasswordNotSet
	default:
		return fmt.Errorf("model.Password: cannot scan %T", src)
	}
	return nil
}
