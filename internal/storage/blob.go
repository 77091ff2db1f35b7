// Package storage keeps question images outside the database behind a small
// blob store port.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/lshigami/psytest/config"
)

const MaxImageSize = 5 << 20

var ErrNotFound = errors.New("blob not found")

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is an incoming file as received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Validate checks the upload is an image of acceptable size.
func (u *Upload) Validate() error {
	if u == nil || u.Reader == nil {
		return errors.New("empty upload")
	}
	if u.Size > MaxImageSize {
		return fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	if _, ok := allowedImageTypes[u.ContentType]; !ok {
		return fmt.Errorf("unsupported image type %q", u.ContentType)
	}
	return nil
}

// Blob is an opened stored object. Callers must close it.
type Blob struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

type BlobStore interface {
	// Put stores the upload under a fresh opaque key and returns the key.
	Put(ctx context.Context, up *Upload) (string, error)
	Open(ctx context.Context, key string) (*Blob, error)
	Delete(ctx context.Context, key string) error
}

// NewKey generates an opaque object key keeping the extension of the content type.
func NewKey(up *Upload) string {
	ext, ok := allowedImageTypes[up.ContentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(up.Filename))
	}
	return uuid.NewString() + ext
}

// ValidKey rejects keys that could escape the store root.
func ValidKey(key string) bool {
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return false
	}
	return true
}

func NewBlobStore(cfg *config.Config) (BlobStore, error) {
	switch cfg.Storage.Driver {
	case "", "fs":
		return NewFSStore(cfg.Storage.UploadDir)
	case "minio":
		return NewMinioStore(context.Background(), cfg.Storage.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
