package domain

import "errors"

var (
	// ErrEmptyToken is returned when a credential-set is attempted without a token.
	ErrEmptyToken = errors.New("empty token")
	// ErrNoToken is returned when a persisted token is required but not present.
	ErrNoToken = errors.New("no token stored")
	// ErrUploadFailed is returned for any failure in the image upload pipeline.
	ErrUploadFailed = errors.New("upload failed")
	// ErrInvalidField is returned when a form field fails client-side validation.
	ErrInvalidField = errors.New("invalid field")
	// ErrImageTypeNotSupported is returned for images in formats the upload
	// pipeline cannot decode.
	ErrImageTypeNotSupported = errors.New("image type not supported")
)
