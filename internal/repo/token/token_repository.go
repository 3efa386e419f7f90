// Package token persists the current bearer token in durable on-device
// storage. There is exactly one token per installation; writers replace it
// wholesale and Delete clears it on logout.
package token

import "context"

// Repository defines the interface for bearer token persistence.
type Repository interface {
	// Get retrieves the persisted token.
	// Returns the token and true if present, or empty string and false if
	// no token is stored. Returns an error if the read fails.
	Get(ctx context.Context) (string, bool, error)

	// Put stores the token, replacing any previous value.
	Put(ctx context.Context, token string) error

	// Delete removes the persisted token. Deleting an absent token is not
	// an error.
	Delete(ctx context.Context) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
