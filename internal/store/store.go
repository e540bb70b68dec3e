// Package store opens and writes the files the mzqc commands work on.
// Paths are local file names or s3://bucket/key URLs. Names ending in
// .gz are (de)compressed transparently.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// S3Config holds the settings for s3:// paths. Credentials come from
// the default AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`  // optional, e.g. MinIO
	PathStyle bool   `yaml:"pathStyle"` // needed for most S3 compatible servers
}

// Store reads and writes local and S3 paths
type Store struct {
	s3cfg S3Config
	s3    objectStore // created on first use of an s3:// path
}

// objectStore is the part of S3 that Store uses
type objectStore interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
}

var (
	// ErrInvalidPath means a path could not be parsed
	ErrInvalidPath = errors.New("store: invalid path")
)

// New returns a Store that uses cfg for s3:// paths
func New(cfg S3Config) *Store {
	return &Store{s3cfg: cfg}
}

// Open opens path for reading
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if bucket, key, ok, err := SplitS3(path); err != nil {
		return nil, err
	} else if ok {
		obj, err := s.objects(ctx)
		if err != nil {
			return nil, err
		}
		rc, err = obj.Get(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rc = f
	}
	if !isGzip(path) {
		return rc, nil
	}
	z, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &gzipReadCloser{Reader: z, under: rc}, nil
}

// ReadFile reads the whole content of path
func (s *Store) ReadFile(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// WriteFile writes data to path. Local files are written to a temporary
// file first and renamed when complete, so a failed write never leaves
// a partial file behind.
func (s *Store) WriteFile(ctx context.Context, path string, data []byte) error {
	if isGzip(path) {
		var b bytes.Buffer
		z := gzip.NewWriter(&b)
		if _, err := z.Write(data); err != nil {
			return err
		}
		if err := z.Close(); err != nil {
			return err
		}
		data = b.Bytes()
	}
	bucket, key, ok, err := SplitS3(path)
	if err != nil {
		return err
	}
	if ok {
		obj, err := s.objects(ctx)
		if err != nil {
			return err
		}
		if err := obj.Put(ctx, bucket, key, data); err != nil {
			return fmt.Errorf("put %s: %w", path, err)
		}
		return nil
	}
	return writeLocal(path, data)
}

func writeLocal(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Exists reports whether a local path exists. S3 paths are assumed to
// exist, a missing object is reported when it is opened.
func Exists(path string) bool {
	if IsS3(path) {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// IsS3 reports whether path is an s3:// URL
func IsS3(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// SplitS3 splits an s3://bucket/key path. ok is false for other paths.
func SplitS3(path string) (bucket, key string, ok bool, err error) {
	if !IsS3(path) {
		return "", "", false, nil
	}
	rest := strings.TrimPrefix(path, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("%w: %q, expected s3://bucket/key", ErrInvalidPath, path)
	}
	return bucket, key, true, nil
}

// BaseName returns the file name part of a local path or S3 key
func BaseName(path string) string {
	if _, key, ok, err := SplitS3(path); ok && err == nil {
		path = key
	}
	return filepath.Base(path)
}

// TrimExt removes the extension from a name, and .gz before it
func TrimExt(name string) string {
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

func (s *Store) objects(ctx context.Context) (objectStore, error) {
	if s.s3 == nil {
		obj, err := newS3Objects(ctx, s.s3cfg)
		if err != nil {
			return nil, err
		}
		s.s3 = obj
	}
	return s.s3, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if err2 := g.under.Close(); err == nil {
		err = err2
	}
	return err
}
