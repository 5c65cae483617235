// SPDX-License-Identifier: GPL-3.0-only

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cinema-server/commons"
)

var ErrNotFound = errors.New("object not found")

// Storage is the object store used for uploads and avatars.
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// GetSignedURL returns a temporary URL for a private object.
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// NewStorage picks the backend named by cfg.Type: "local" or "s3".
func NewStorage(cfg commons.StorageSettings) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.BasePath, cfg.BaseURL, cfg.SigningKey)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
