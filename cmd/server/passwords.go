package main

import (
	"fmt"
	"io"

	"github.com/phrazzld/tasktracker/internal/service/auth"
)

// hashPasswords writes "password: hash" lines for each password.
func hashPasswords(w io.Writer, cost int, passwords []string) error {
	hasher := auth.NewBcryptVerifier(cost)
	for _, password := range passwords {
		hash, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", password, hash); err != nil {
			return err
		}
	}
	return nil
}
