package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalBlobStore writes payloads to a directory on the local filesystem.
// Writes go to a temp file first and are renamed into place, so a stored
// object is either fully present or absent.
type LocalBlobStore struct {
	basePath string
}

func NewLocalBlobStore(basePath string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("blob store init: %w", err)
	}
	return &LocalBlobStore{basePath: basePath}, nil
}

func (s *LocalBlobStore) Save(ctx context.Context, name string, reader io.Reader) (int64, error) {
	tempFile, err := os.CreateTemp(s.basePath, "upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tempFile.Name())

	written, err := io.Copy(tempFile, reader)
	if err != nil {
		tempFile.Close()
		return 0, err
	}
	if err := tempFile.Close(); err != nil {
		return 0, err
	}

	targetPath := filepath.Join(s.basePath, name)
	if err := os.Rename(tempFile.Name(), targetPath); err != nil {
		return 0, err
	}

	return written, nil
}

func (s *LocalBlobStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.basePath)
	return err
}
