// SPDX-License-Identifier: GPL-3.0-only

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinema-server/tokens"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSigningKey = errors.New("local storage needs a signing key")

// LocalStorage keeps objects on disk under basePath. Files are served by the
// /media route, which only answers URLs carrying a valid media token.
type LocalStorage struct {
	basePath string
	baseURL  string
	signer   *tokens.Service
}

func NewLocalStorage(basePath, baseURL, signingKey string) (*LocalStorage, error) {
	if signingKey == "" {
		return nil, ErrMissingSigningKey
	}
	if basePath == "" {
		basePath = "./media"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		signer:   tokens.NewService(signingKey, tokens.DefaultTTL),
	}, nil
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// resolve maps key to a path inside basePath, rejecting traversal.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrNotFound
	}

	objectKey := normalizeKey(key)
	token, err := s.signer.Issue(tokens.Claims{
		Type:             tokens.TypeMedia,
		RegisteredClaims: jwt.RegisteredClaims{Subject: objectKey},
	}, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign media URL: %w", err)
	}
	return s.baseURL + "/" + objectKey + "?token=" + token, nil
}

// VerifyURLToken checks that token was issued by GetSignedURL for key and has
// not expired.
func (s *LocalStorage) VerifyURLToken(key, token string) error {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return err
	}
	if claims.Type != tokens.TypeMedia || claims.Subject != normalizeKey(key) {
		return tokens.ErrInvalidToken
	}
	return nil
}

func normalizeKey(key string) string {
	return strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+key)), "/")
}
