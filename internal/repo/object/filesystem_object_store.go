package object

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yks-app/yks-go/internal/infra/logging"
)

var (
	ErrBytesWrittenMismatch = errors.New("bytes written mismatch")
	ErrInvalidObjectName    = errors.New("invalid object name")
)

// FileSystemStoreConfig holds configuration for the filesystem-based object store.
type FileSystemStoreConfig struct {
	// Basedir is the root directory for object storage
	Basedir string `env:"BASEDIR" default:"var/storage/objects"`
}

// FileSystemStore implements Store using the local filesystem. It exists for
// development and tests, standing in for the hosted object storage service.
type FileSystemStore struct {
	cfg FileSystemStoreConfig
	log logging.Logger
	m   *sync.Mutex
}

var _ Store = (*FileSystemStore)(nil)

// FileSystemStoreFactory creates a factory function that returns a new
// FileSystemStore. The factory function implements the StoreFactory type.
func FileSystemStoreFactory(cfg FileSystemStoreConfig) StoreFactory {
	return func() (Store, error) {
		return NewFileSystemStore(cfg)
	}
}

// NewFileSystemStore creates a new FileSystemStore with the given configuration.
// It creates the base directory if needed. Returns an error if initialization fails.
func NewFileSystemStore(cfg FileSystemStoreConfig) (*FileSystemStore, error) {
	log := logging.GetLogger("repo.object.filesystem_store").With(
		logging.Group("store", "basedir", cfg.Basedir),
	)

	if err := os.MkdirAll(cfg.Basedir, 0o755); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	return &FileSystemStore{
		cfg: cfg,
		log: log,
		m:   new(sync.Mutex),
	}, nil
}

// Put implements Store.Put by writing the object to a temporary file and
// renaming it into place, so readers never observe partial writes.
func (fsStore *FileSystemStore) Put(ctx context.Context, name string, data []byte, contentType string) (_ string, err error) {
	log := fsStore.log.With(logging.Group("object",
		"name", name,
		"size", len(data),
		"content_type", contentType,
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "put object failed", "error", err)
		} else {
			log.DebugContext(ctx, "object stored")
		}
	}()

	filename, err := fsStore.objectFilename(name)
	if err != nil {
		return "", err
	}

	fsStore.m.Lock()
	defer fsStore.m.Unlock()

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return "", fmt.Errorf("make object dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(filename), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	written, err := tmpFile.Write(data)
	if err != nil {
		tmpFile.Close()

		return "", fmt.Errorf("write object: %w", err)
	}

	if written != len(data) {
		tmpFile.Close()

		return "", fmt.Errorf("%w: %d != %d", ErrBytesWrittenMismatch, written, len(data))
	}

	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return "", fmt.Errorf("rename object: %w", err)
	}

	return "file://" + filename, nil
}

// Delete implements Store.Delete. Deleting an absent object is not an error.
func (fsStore *FileSystemStore) Delete(ctx context.Context, name string) error {
	filename, err := fsStore.objectFilename(name)
	if err != nil {
		return err
	}

	fsStore.m.Lock()
	defer fsStore.m.Unlock()

	if err := os.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

// objectFilename maps an object name to an absolute path under the base
// directory, rejecting names that would escape it.
func (fsStore *FileSystemStore) objectFilename(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectName, name)
	}

	abs, err := filepath.Abs(filepath.Join(fsStore.cfg.Basedir, filepath.FromSlash(name)))
	if err != nil {
		return "", fmt.Errorf("resolve object path: %w", err)
	}

	return abs, nil
}
