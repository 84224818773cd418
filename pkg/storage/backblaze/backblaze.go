package backblaze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kurin/blazer/b2"

	"github.com/williamokano/apk_releaser/pkg/envfile"
	"github.com/williamokano/apk_releaser/pkg/storage"
)

type Backend struct {
	name   string
	client *b2.Client
	bucket *b2.Bucket
}

func init() {
	storage.RegisterBackend("backblaze", RequiredKeys, func(ctx context.Context, cfg storage.Config) (storage.Backend, error) {
		return New(ctx, cfg)
	})
}

// New creates a new Backblaze B2 backend
func New(ctx context.Context, cfg storage.Config) (*Backend, error) {
	b2Cfg, err := parseConfig(cfg.Options)
	if err != nil {
		return nil, err
	}

	// Create B2 client
	client, err := b2.NewClient(ctx, b2Cfg.AccountID, b2Cfg.ApplicationKey)
	if err != nil {
		classified := storage.ClassifyTransport(err)
		if !errors.Is(classified, storage.ErrConnFailed) && !errors.Is(classified, storage.ErrTLS) {
			classified = fmt.Errorf("%w: %w", storage.ErrAuthFailed, err)
		}
		return nil, storage.WrapError(cfg.Name, "init", classified)
	}

	// Get bucket
	bucket, err := client.Bucket(ctx, b2Cfg.BucketName)
	if err != nil {
		return nil, storage.WrapError(cfg.Name, "get bucket", err)
	}

	return &Backend{
		name:   cfg.Name,
		client: client,
		bucket: bucket,
	}, nil
}

func (b *Backend) Name() string { return b.name }
func (b *Backend) Type() string { return "backblaze" }

// Write uploads a file to B2
func (b *Backend) Write(ctx context.Context, sourcePath, key string, opts storage.WriteOptions) error {
	return storage.WithRetry(ctx, storage.DefaultRetryConfig(), func() error {
		file, err := os.Open(sourcePath)
		if err != nil {
			return err
		}
		defer file.Close()

		writer := b.bucket.Object(key).NewWriter(ctx)
		if opts.ContentType != "" {
			writer = writer.WithAttrs(&b2.Attrs{ContentType: opts.ContentType})
		}

		if _, err := io.Copy(writer, file); err != nil {
			writer.Close()
			return storage.WrapError(b.name, "upload", storage.ClassifyTransport(err))
		}

		if err := writer.Close(); err != nil {
			return storage.WrapError(b.name, "upload", storage.ClassifyTransport(err))
		}

		return nil
	})
}

// Stat returns file metadata
func (b *Backend) Stat(ctx context.Context, key string) (*storage.FileInfo, error) {
	attrs, err := b.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if b2.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.WrapError(b.name, "stat", err)
	}

	return &storage.FileInfo{
		Path:    key,
		Size:    attrs.Size,
		ModTime: attrs.UploadTimestamp,
	}, nil
}

// URL returns the friendly download URL of key
func (b *Backend) URL(key string) string {
	return b.bucket.Object(key).URL()
}

// Close is a no-op for B2
func (b *Backend) Close() error {
	return nil
}

func parseConfig(options envfile.Values) (*Config, error) {
	if missing := options.Missing(RequiredKeys...); len(missing) > 0 {
		return nil, &storage.MissingOptionsError{Backend: "backblaze", Keys: missing}
	}

	return &Config{
		AccountID:      options.Get(KeyAccountID),
		ApplicationKey: options.Get(KeyApplicationKey),
		BucketName:     options.Get(KeyBucket),
	}, nil
}
