// Package storage stores recipe images on a configurable disk.
//
// Two drivers are available:
//
//   - "local"  local filesystem under STORAGE_LOCAL_ROOT (default)
//
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2)
//
//     disk, err := storage.New(ctx, config.Get())
//     url, err := disk.Put(ctx, "1700000000_latte.png", file, "image/png")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shashiranjanraj/brewhouse/config"
)

// ErrNotFound is returned by Open when no object exists at the name.
var ErrNotFound = errors.New("storage: file not found")

// Disk is implemented by every driver. Names are flat object keys; the
// caller is responsible for sanitising them.
type Disk interface {
	// Put writes r under name and returns the public URL of the object.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)

	// Open returns the object's content. Caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes an object. Returns nil if it did not exist.
	Delete(ctx context.Context, name string) error

	// URL returns the public URL for name.
	URL(name string) string
}

// New builds the disk named by cfg.StorageDisk.
func New(ctx context.Context, cfg config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "", "local":
		return NewLocal(cfg.StorageLocalRoot, cfg.StorageURL)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", cfg.StorageDisk)
	}
}
