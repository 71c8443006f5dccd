// Package storage defines the key-value persistence used for the note collection.
package storage

import (
	"fmt"
	"strings"

	"github.com/starford/memo/internal/apperr"
)

// Provider is the interface for persisted key-value storage.
type Provider interface {
	// Get returns the value stored under key, or apperr.ErrNotFound.
	Get(key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// ValidateKey rejects empty keys and anything that could escape a namespace
// when used as a file name.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage: %w: %q", apperr.ErrInvalidKey, key)
	}
	return nil
}
