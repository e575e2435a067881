// Package filestore keeps uploaded files under a media root.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// Store saves, reads and deletes files by relative path.
type Store interface {
	// Save writes r under name and returns the stored path and size. The stored
	// path differs from name when name is already taken.
	Save(ctx context.Context, name string, r io.Reader) (string, int64, error)
	Read(ctx context.Context, name string) ([]byte, error)
	// Delete removes a file. A missing file is not an error.
	Delete(ctx context.Context, name string) error
}

// AferoStore implements Store on an afero filesystem.
type AferoStore struct {
	fs       afero.Fs
	maxBytes int64
}

var _ Store = (*AferoStore)(nil)

// NewStore wraps fs. A maxBytes of zero disables the size limit.
func NewStore(fs afero.Fs, maxBytes int64) *AferoStore {
	return &AferoStore{fs: fs, maxBytes: maxBytes}
}

// NewDiskStore stores files below root on the local disk.
func NewDiskStore(root string, maxBytes int64) (*AferoStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", root, err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), root), maxBytes), nil
}

func cleanName(name string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: empty file name", apperrors.ErrBadRequest)
	}
	return cleaned, nil
}

// availableName appends a short random suffix while name is taken.
func (s *AferoStore) availableName(name string) (string, error) {
	candidate := name
	for i := 0; i < 5; i++ {
		exists, err := afero.Exists(s.fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		ext := path.Ext(name)
		candidate = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), uuid.NewString()[:7], ext)
	}
	return "", fmt.Errorf("%w: no free name for %s", apperrors.ErrConflict, name)
}

// Save implements Store.
func (s *AferoStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(cleaned), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory for %s: %w", cleaned, err)
	}
	stored, err := s.availableName(cleaned)
	if err != nil {
		return "", 0, err
	}

	f, err := s.fs.Create(stored)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", stored, err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	size, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr == nil && s.maxBytes > 0 && size > s.maxBytes {
		copyErr = fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrBadRequest, s.maxBytes)
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = s.fs.Remove(stored)
		return "", 0, fmt.Errorf("failed to write %s: %w", stored, copyErr)
	}

	logger.FromContext(ctx).Debug("Stored file", zap.String("path", stored), zap.Int64("size", size))
	return stored, size, nil
}

// Read implements Store.
func (s *AferoStore) Read(_ context.Context, name string) ([]byte, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, cleaned)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: file %s", apperrors.ErrNotFound, cleaned)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cleaned, err)
	}
	return data, nil
}

// Delete implements Store.
func (s *AferoStore) Delete(ctx context.Context, name string) error {
	cleaned, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(cleaned); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.FromContext(ctx).Debug("File already gone", zap.String("path", cleaned))
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", cleaned, err)
	}
	return nil
}

// DeleteAll removes every path, logging failures instead of returning them.
func DeleteAll(ctx context.Context, s Store, paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.Delete(ctx, p); err != nil {
			logger.FromContext(ctx).Warn("Failed to delete stored file", zap.String("path", p), zap.Error(err))
		}
	}
}
