// Package storage provides image persistence behind a small port so the
// catalog and verification flows do not care whether files land on local
// disk or in Cloudinary.
package storage

import (
	"bytes"
	"context"
	"image"

	// Register decoders for the formats accepted on upload.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageStore stores uploaded images and returns an opaque reference.
type ImageStore interface {
	Store(ctx context.Context, folder, filename string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Dimensions holds pixel dimensions of an image.
type Dimensions struct {
	Width  int
	Height int
}

// ProbeDimensions reads the pixel dimensions of an uploaded image without
// decoding the full pixel data. The second return value is false when the
// bytes are not a readable jpeg/png/webp image.
func ProbeDimensions(data []byte) (Dimensions, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, false
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, true
}
