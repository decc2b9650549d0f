// Package storage is a small filesystem abstraction with a local driver and
// an S3-compatible driver (AWS S3, MinIO, R2, Spaces).
//
//	disk, err := storage.FromConfig(ctx)
//	err = disk.Put(ctx, "reports/orders.csv", data, "text/csv")
//	url := disk.URL("reports/orders.csv")
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/stockroom/config"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface. Paths are slash-separated and
// relative to the disk root.
type Disk interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	// Files lists file paths directly inside directory, sorted.
	Files(ctx context.Context, directory string) ([]string, error)
	// URL returns the public URL for path.
	URL(path string) string
	Name() string
}

// FromConfig builds the disk named by STORAGE_DISK.
func FromConfig(ctx context.Context) (Disk, error) {
	switch name := config.StorageDefault(); name {
	case "local":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3)", name)
	}
}
