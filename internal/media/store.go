// Package media stores uploaded binary blobs and hands back retrievable URLs.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyBlob      = errors.New("media: empty blob")
	ErrInvalidDataURI = errors.New("media: invalid data URI")
)

// Store accepts a blob and returns a URL it can later be fetched from.
type Store interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

var extByContentType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskStore keeps blobs on the local filesystem under dir and serves them
// from baseURL (a static route on the app server).
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create storage dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the blob under a random name and returns its URL.
func (s *DiskStore) Save(_ context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyBlob
	}

	ext, ok := extByContentType[contentType]
	if !ok {
		ext = ".bin"
	}
	name := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("media: write blob: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Remove deletes a previously saved blob, identified by its URL. URLs outside
// this store are ignored; a missing file is not an error.
func (s *DiskStore) Remove(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, s.baseURL+"/"))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media: remove blob: %w", err)
	}
	return nil
}

// Dir returns the directory served by the static route.
func (s *DiskStore) Dir() string { return s.dir }

// DecodeDataURI parses a "data:<type>;base64,<payload>" string, the format
// clients upload images in.
func DecodeDataURI(s string) (data []byte, contentType string, err error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, "", ErrInvalidDataURI
	}
	meta, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", ErrInvalidDataURI
	}
	contentType = strings.TrimSuffix(meta, ";base64")

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, contentType, nil
}
