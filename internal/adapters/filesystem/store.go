package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

var errOutsideRoot = errors.New("key resolves outside storage root")

// Store maps buckets and keys onto a directory tree: <root>/<bucket>/<key>.
// It implements core.MessageSource and core.ObjectStore for local runs.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a store rooted at root. An empty root resolves buckets
// relative to the working directory.
func NewStore(root string, logger *zap.Logger) *Store {
	return &Store{
		root:   root,
		logger: logger,
	}
}

func (s *Store) path(bucket, key string) (string, error) {
	p := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if s.root == "" {
		return p, nil
	}
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return p, nil
}

// Fetch returns the content of the file backing loc
func (s *Store) Fetch(ctx context.Context, loc core.Location) ([]byte, error) {
	p, err := s.path(loc.Bucket, loc.Key)
	if err != nil {
		return nil, &core.RetrievalError{Bucket: loc.Bucket, Key: loc.Key, Err: err}
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &core.RetrievalError{Bucket: loc.Bucket, Key: loc.Key, Err: err}
	}
	return data, nil
}

// Latest returns the most recently modified file under prefix
func (s *Store) Latest(ctx context.Context, bucket, prefix string) (core.Location, error) {
	bucketDir := filepath.Join(s.root, bucket)

	var (
		newestKey string
		newestAt  time.Time
	)
	err := filepath.WalkDir(bucketDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mod := info.ModTime()
		if newestKey == "" || mod.After(newestAt) || (mod.Equal(newestAt) && key > newestKey) {
			newestKey, newestAt = key, mod
		}
		return nil
	})
	if err != nil {
		return core.Location{}, &core.RetrievalError{Bucket: bucket, Key: prefix, Err: err}
	}
	if newestKey == "" {
		return core.Location{}, &core.RetrievalError{Bucket: bucket, Key: prefix, Err: core.ErrNoObjects}
	}

	return core.Location{Bucket: bucket, Key: newestKey}, nil
}

// Put writes obj through a temporary file so readers never see partial content
func (s *Store) Put(ctx context.Context, obj *core.StorageObject) error {
	p, err := s.path(obj.Bucket, obj.Key)
	if err != nil {
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(obj.Data); err != nil {
		tmp.Close()
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: err}
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: err}
	}

	if s.logger != nil {
		s.logger.Debug("Wrote file", zap.String("path", p), zap.Int("size", len(obj.Data)))
	}
	return nil
}

// Exists reports whether a file backs loc
func (s *Store) Exists(ctx context.Context, loc core.Location) (bool, error) {
	p, err := s.path(loc.Bucket, loc.Key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
