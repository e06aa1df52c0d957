// Package auth gates the recruiter commands behind a single shared password.
// The bcrypt hash lives in a file; a missing file bootstraps the default
// password so a fresh install is usable immediately.
package auth

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the bootstrap password written on first use. Operators
// are expected to change it with Set.
const DefaultPassword = "password123"

// Gate verifies recruiter passwords against a hash file.
type Gate struct {
	path string
}

func NewGate(path string) *Gate {
	return &Gate{path: path}
}

// Verify checks the given password against the stored hash. When no hash file
// exists yet, the default password is accepted and its hash is written so
// subsequent runs behave identically.
func (g *Gate) Verify(password string) error {
	hash, err := g.loadHash()
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return fmt.Errorf("password verification failed: %w", err)
	}

	return nil
}

// Set replaces the stored hash with one for the given password.
func (g *Gate) Set(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := os.WriteFile(g.path, hash, 0o600); err != nil {
		return fmt.Errorf("writing password hash: %w", err)
	}

	return nil
}

func (g *Gate) loadHash() ([]byte, error) {
	data, err := os.ReadFile(g.path)
	if err == nil {
		return []byte(strings.TrimSpace(string(data))), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading password hash: %w", err)
	}

	if err := g.Set(DefaultPassword); err != nil {
		return nil, err
	}
	return os.ReadFile(g.path)
}
