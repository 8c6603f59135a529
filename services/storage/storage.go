// Package storage uploads machine and booking photos to Cloudinary.
package storage

import (
	"context"
	"fmt"
	"io"

	"machly/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService defines the interface for photo storage operations.
type StorageService interface {
	// UploadImage stores the image under the given folder and returns its
	// public URL.
	UploadImage(ctx context.Context, file io.Reader, folder string) (string, error)
	// Delete removes a previously uploaded asset by its public ID.
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStorage implements StorageService using Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage builds a Cloudinary-backed storage service from the
// application configuration.
func NewCloudinaryStorage(cfg config.Config) (*CloudinaryStorage, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// UploadImage uploads the image and returns its HTTPS delivery URL.
func (s *CloudinaryStorage) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload returned no URL")
	}
	return result.SecureURL, nil
}

// Delete removes the asset from Cloudinary.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", publicID, err)
	}
	return nil
}
