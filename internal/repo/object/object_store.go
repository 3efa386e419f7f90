// Package object abstracts the remote object store that holds uploaded
// images. Put returns the public download URL for the stored object.
package object

import "context"

// Store defines the interface for durable object storage.
type Store interface {
	// Put stores data under the given object name and returns the public
	// URL from which it can be downloaded.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// Delete removes the object with the given name.
	Delete(ctx context.Context, name string) error
}

// StoreFactory is a function that creates a new Store instance.
// Returns an error if initialization fails.
type StoreFactory func() (Store, error)
