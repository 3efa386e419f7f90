package uploadsvc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/yks-app/yks-go/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
)

//nolint:gochecknoglobals
var (
	imageMagicHeaders = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
		MIMETypeTIFF: {"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"},
	}

	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeJPEG: jpeg.Decode,
		MIMETypePNG:  png.Decode,
		MIMETypeTIFF: tiff.Decode,
	}
)

// sniffMIMEType identifies the image format from its magic header.
// Returns ErrImageTypeNotSupported for anything but JPEG, PNG and TIFF.
func sniffMIMEType(data []byte) (string, error) {
	for mimeType, headers := range imageMagicHeaders {
		for _, header := range headers {
			if bytes.HasPrefix(data, []byte(header)) {
				return mimeType, nil
			}
		}
	}

	return "", domain.ErrImageTypeNotSupported
}

// normalizeImage decodes the image, downscales it so its longest side does
// not exceed maxDimension, and re-encodes it as JPEG. Images already within
// bounds are still re-encoded, so every uploaded object is a JPEG.
func normalizeImage(data []byte, maxDimension, quality int) ([]byte, error) {
	mimeType, err := sniffMIMEType(data)
	if err != nil {
		return nil, err
	}

	original, err := imageDecoders[mimeType](bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := original.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if longest := max(width, height); longest > maxDimension {
		ratio := float64(maxDimension) / float64(longest)
		width = int(float64(width) * ratio)
		height = int(float64(height) * ratio)
	}

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(bitmap, bitmap.Bounds(), original, bounds, draw.Over, nil)

	var buffer bytes.Buffer

	if err := jpeg.Encode(&buffer, bitmap, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buffer.Bytes(), nil
}
