// Package uploadsvc converts a locally picked image into a durable remote
// URL: sniff and decode the file, downscale it, and store it in the object
// store under a randomized name.
package uploadsvc

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/yks-app/yks-go/internal/domain"
	"github.com/yks-app/yks-go/internal/infra/logging"
	"github.com/yks-app/yks-go/internal/repo/object"
)

// Object name prefixes, one per upload kind.
const (
	PrefixProfileImages = "profile_images"
	PrefixPosts         = "posts"
)

// UploadConfig holds configuration for the upload pipeline.
type UploadConfig struct {
	// MaxDimension caps the longest image side in pixels before upload
	MaxDimension int `env:"MAX_DIMENSION" default:"1080"`

	// JPEGQuality is the re-encoding quality (1-100)
	JPEGQuality int `env:"JPEG_QUALITY" default:"85"`
}

// UploadService uploads local images to the object store.
type UploadService struct {
	store object.Store
	cfg   UploadConfig
	log   logging.Logger
}

// NewUploadService creates an UploadService over the given object store.
func NewUploadService(store object.Store, cfg UploadConfig) *UploadService {
	return &UploadService{
		store: store,
		cfg:   cfg,
		log:   logging.GetLogger("svc.uploadsvc.upload_service"),
	}
}

// UploadFile reads a local image file and uploads it under the given prefix,
// returning the public download URL. Any failure surfaces as ErrUploadFailed;
// an object stored before a later failure is left in place.
func (s *UploadService) UploadFile(ctx context.Context, path, prefix string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", failed(fmt.Errorf("read file: %w", err))
	}

	return s.Upload(ctx, data, prefix)
}

// Upload normalizes the image bytes and stores them under a randomized
// object name, returning the public download URL.
func (s *UploadService) Upload(ctx context.Context, data []byte, prefix string) (_ string, err error) {
	log := s.log.With(logging.Group("upload",
		"prefix", prefix,
		"size", len(data),
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "upload failed", "error", err)
		} else {
			log.DebugContext(ctx, "upload complete")
		}
	}()

	normalized, err := normalizeImage(data, s.cfg.MaxDimension, s.cfg.JPEGQuality)
	if err != nil {
		return "", failed(fmt.Errorf("normalize image: %w", err))
	}

	name := prefix + "/" + uuid.NewString() + ".jpg"

	url, err := s.store.Put(ctx, name, normalized, MIMETypeJPEG)
	if err != nil {
		return "", failed(fmt.Errorf("store object: %w", err))
	}

	return url, nil
}

// failed wraps any pipeline error with the generic upload failure sentinel.
func failed(err error) error {
	return errors.Join(domain.ErrUploadFailed, err)
}
