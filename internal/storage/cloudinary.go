package storage

import (
	"bytes"
	"context"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore persists images in Cloudinary. References are Cloudinary
// public IDs (folder qualified), so they stay deletable.
type CloudinaryStore struct {
	cld *cld.Cloudinary
}

// NewCloudinaryStore creates a Cloudinary-backed image store from a
// CLOUDINARY_URL style connection string.
func NewCloudinaryStore(url string) (*CloudinaryStore, error) {
	c, err := cld.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: c}, nil
}

// Store uploads data and returns the public ID of the asset.
func (s *CloudinaryStore) Store(ctx context.Context, folder, filename string, data []byte) (string, error) {
	// Cloudinary public IDs carry no extension, so the original filename
	// is not part of the reference.
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     uuid.New().String(),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return res.PublicID, nil
}

// Delete destroys the uploaded asset.
func (s *CloudinaryStore) Delete(ctx context.Context, ref string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: ref})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
