package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FSStore keeps blobs as flat files in one directory.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Put(ctx context.Context, up *Upload) (string, error) {
	if err := up.Validate(); err != nil {
		return "", err
	}
	key := NewKey(up)
	path := filepath.Join(s.root, key)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	// one extra byte detects a lying Size header
	n, err := io.Copy(f, io.LimitReader(up.Reader, MaxImageSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxImageSize {
		err = fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	log.Debug().Str("key", key).Int64("size", n).Msg("FSStore Put: blob stored")
	return key, nil
}

func (s *FSStore) Open(ctx context.Context, key string) (*Blob, error) {
	if !ValidKey(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.root, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat blob: %w", err)
	}
	return &Blob{
		ReadCloser:  f,
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
		Size:        info.Size(),
	}, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
