package storage

import (
	"context"
	"time"

	"github.com/williamokano/apk_releaser/pkg/envfile"
)

// ContentTypeAPK is the MIME type Android package installers expect
const ContentTypeAPK = "application/vnd.android.package-archive"

// Backend represents an object store that release artifacts are uploaded to
type Backend interface {
	// Name returns a human-readable name for this backend (e.g., "s3", "b2_mirror")
	Name() string

	// Type returns the backend type (s3, backblaze, ssh, local)
	Type() string

	// Write uploads a file from local filesystem to the backend
	// sourcePath: path to local file
	// key: object key in backend (e.g., "apk/app-20240101_120000.apk")
	Write(ctx context.Context, sourcePath string, key string, opts WriteOptions) error

	// Stat returns metadata about a stored object
	Stat(ctx context.Context, key string) (*FileInfo, error)

	// URL returns the backend's own address for key. Used when no public
	// base URL is configured.
	URL(key string) string

	// Close releases resources (connections, sessions)
	Close() error
}

// WriteOptions carries per-object metadata
type WriteOptions struct {
	ContentType string
}

// FileInfo represents metadata about a stored object
type FileInfo struct {
	Path    string    // Object key
	Size    int64     // Size in bytes
	ModTime time.Time // Last modification time
}

// Config represents storage backend configuration
type Config struct {
	Name    string         // User-friendly name (e.g., "s3")
	Type    string         // Backend type: s3, backblaze, ssh, local
	Options envfile.Values // Env file values; each backend reads its own keys
}
