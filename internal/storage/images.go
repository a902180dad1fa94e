// Package storage persists committed documents: the original image on disk
// and a document record in MongoDB.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleetdocs/internal/logger"
)

// ImageStore writes original document images under a base directory. The
// stored path is what the document record references.
type ImageStore struct {
	dir string
	log zerolog.Logger
}

// NewImageStore creates the store rooted at dir.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{
		dir: dir,
		log: logger.WithComponent("image-store"),
	}
}

// StoreImage writes one image and returns its path. A uuid prefix keeps
// same-named uploads from clobbering each other.
func (s *ImageStore) StoreImage(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image store dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+"-"+filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	s.log.Debug().Str("path", path).Int("bytes", len(data)).Msg("stored document image")
	return path, nil
}
