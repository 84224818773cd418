package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/williamokano/apk_releaser/pkg/storage"
)

// KeyPath is the env file key naming the target directory
const KeyPath = "LOCAL_STORAGE_PATH"

type Backend struct {
	name     string
	basePath string
}

func init() {
	storage.RegisterBackend("local", []string{KeyPath}, func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(cfg)
	})
}

// New creates a new local filesystem backend
func New(cfg storage.Config) (*Backend, error) {
	path := cfg.Options.Get(KeyPath)
	if path == "" {
		return nil, fmt.Errorf("missing required option: %s", KeyPath)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "init", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Backend{
		name:     cfg.Name,
		basePath: abs,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "local" }

// Write copies a file to the backend. Content type is not recorded on disk.
func (b *Backend) Write(ctx context.Context, sourcePath, key string, opts storage.WriteOptions) error {
	destFullPath := filepath.Join(b.basePath, filepath.FromSlash(key))

	// Ensure destination directory exists
	if err := os.MkdirAll(filepath.Dir(destFullPath), 0755); err != nil {
		return storage.WrapError(b.name, "write", err)
	}

	// Open source file
	source, err := os.Open(sourcePath)
	if err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	defer source.Close()

	// Create destination file
	dest, err := os.Create(destFullPath)
	if err != nil {
		return storage.WrapError(b.name, "write", err)
	}
	defer dest.Close()

	// Copy data
	if _, err := io.Copy(dest, source); err != nil {
		os.Remove(destFullPath) // Clean up partial file
		return storage.WrapError(b.name, "write", err)
	}

	return nil
}

// Stat returns metadata about a file
func (b *Backend) Stat(ctx context.Context, key string) (*storage.FileInfo, error) {
	info, err := os.Stat(filepath.Join(b.basePath, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    key,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// URL returns a file:// URL for key
func (b *Backend) URL(key string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(b.basePath, filepath.FromSlash(key)))}
	return u.String()
}

// Close is a no-op for local backend
func (b *Backend) Close() error {
	return nil
}
